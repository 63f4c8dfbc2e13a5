// Package console runs the interactive recipe menu on a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"

	"recipe-box/internal/domain"
	"recipe-box/internal/service"
)

const timeLayout = "2006-01-02 15:04:05"

// Console holds the state of one interactive run. The session token lives
// only in memory and is dropped on logout or exit.
type Console struct {
	app    *service.App
	logger logrus.FieldLogger
	p      *prompter

	token   string
	name    string
	listing []int64
}

func New(app *service.App, in io.Reader, out io.Writer) *Console {
	return &Console{
		app:    app,
		logger: app.Logger.WithField("component", "console"),
		p:      &prompter{in: bufio.NewReader(in), out: out, fd: terminalFD(in)},
	}
}

// Run drives the menu until the user exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	c.println("\n=== Welcome to Recipe Box ===")

	for {
		var err error
		if c.token == "" {
			var done bool
			done, err = c.guestMenu(ctx)
			if done {
				c.println("Goodbye!")
				return nil
			}
		} else {
			err = c.memberMenu(ctx)
		}

		if errors.Is(err, io.EOF) {
			c.logout(ctx)
			c.println("\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			c.logout(ctx)
			return ctx.Err()
		}
	}
}

func (c *Console) guestMenu(ctx context.Context) (bool, error) {
	c.println("\n1. Create account\n2. Login\n3. Exit")
	choice, err := c.p.text("\nChoose an option (1-3): ")
	if err != nil {
		return false, err
	}

	switch choice {
	case "1":
		return false, c.register(ctx)
	case "2":
		return false, c.login(ctx)
	case "3":
		return true, nil
	default:
		c.println("Invalid choice. Please try again.")
		return false, nil
	}
}

func (c *Console) memberMenu(ctx context.Context) error {
	c.println("\n1. Add recipe\n2. List my recipes\n3. View recipe\n4. Edit recipe\n5. Delete recipe\n6. Logout")
	choice, err := c.p.text("\nChoose an option (1-6): ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return c.addRecipe(ctx)
	case "2":
		return c.listRecipes(ctx)
	case "3":
		return c.viewRecipe(ctx)
	case "4":
		return c.editRecipe(ctx)
	case "5":
		return c.deleteRecipe(ctx)
	case "6":
		c.println(fmt.Sprintf("Goodbye, %s!", c.name))
		c.logout(ctx)
		return nil
	default:
		c.println("Invalid choice. Please try again.")
		return nil
	}
}

func (c *Console) register(ctx context.Context) error {
	name, err := c.p.text("Enter your name: ")
	if err != nil {
		return err
	}
	email, err := c.p.text("Enter your email: ")
	if err != nil {
		return err
	}
	password, err := c.p.password("Enter a password: ")
	if err != nil {
		return err
	}
	confirm, err := c.p.password("Confirm password: ")
	if err != nil {
		return err
	}

	if err := service.CheckPasswordConfirmation(password, confirm); err != nil {
		c.report(err)
		return nil
	}
	account, err := c.app.Accounts.Register(ctx, name, email, password)
	if err != nil {
		c.report(err)
		return nil
	}
	c.println(fmt.Sprintf("Account for '%s' created successfully!", account.Name))
	return nil
}

func (c *Console) login(ctx context.Context) error {
	email, err := c.p.text("Enter your email: ")
	if err != nil {
		return err
	}
	password, err := c.p.password("Enter your password: ")
	if err != nil {
		return err
	}
	remember, err := c.p.confirm("Remember me?")
	if err != nil {
		return err
	}

	account, err := c.app.Accounts.Authenticate(ctx, email, password)
	if err != nil {
		c.report(err)
		return nil
	}
	token, _, err := c.app.Sessions.Login(ctx, account.ID, remember)
	if err != nil {
		c.report(err)
		return nil
	}

	c.token, c.name, c.listing = token, account.Name, nil
	c.println(fmt.Sprintf("Welcome back, %s!", account.Name))
	return nil
}

func (c *Console) logout(ctx context.Context) {
	if c.token == "" {
		return
	}
	if err := c.app.Sessions.Logout(ctx, c.token); err != nil {
		c.logger.WithError(err).Warn("logout failed")
	}
	c.token, c.name, c.listing = "", "", nil
}

// principal re-resolves the held token so an expired session is noticed on
// the next action.
func (c *Console) principal(ctx context.Context) (service.Principal, error) {
	return c.app.Guard.Authenticate(ctx, c.token)
}

func (c *Console) addRecipe(ctx context.Context) error {
	name, err := c.p.text("Enter recipe name: ")
	if err != nil {
		return err
	}
	ingredients, err := c.p.text("Enter ingredients (comma separated): ")
	if err != nil {
		return err
	}
	instructions, err := c.p.text("Enter instructions: ")
	if err != nil {
		return err
	}

	p, err := c.principal(ctx)
	if err != nil {
		c.report(err)
		return nil
	}
	recipe, err := c.app.Guard.Add(ctx, p, name, ingredients, instructions)
	if err != nil {
		c.report(err)
		return nil
	}
	c.listing = nil
	c.println(fmt.Sprintf("Recipe '%s' added successfully!", recipe.Name))
	return nil
}

func (c *Console) listRecipes(ctx context.Context) error {
	recipes, err := c.refresh(ctx)
	if err != nil {
		c.report(err)
		return nil
	}
	if len(recipes) == 0 {
		c.println("No recipes found!")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Recipe Name", "Last Updated")
	for i, r := range recipes {
		t.Row(strconv.Itoa(i+1), r.Name, r.UpdatedAt.UTC().Format(timeLayout))
	}
	c.println("\nYour Recipes:")
	c.println(t.String())
	return nil
}

// refresh materializes the listing and remembers positions for selection.
func (c *Console) refresh(ctx context.Context) ([]domain.Recipe, error) {
	p, err := c.principal(ctx)
	if err != nil {
		return nil, err
	}
	seq, err := c.app.Guard.List(ctx, p)
	if err != nil {
		return nil, err
	}

	var recipes []domain.Recipe
	ids := make([]int64, 0)
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
		ids = append(ids, r.ID)
	}
	c.listing = ids
	return recipes, nil
}

// pick asks for a listing position and returns the owned recipe behind it.
func (c *Console) pick(ctx context.Context, verb string) (*domain.Recipe, service.Principal, error) {
	n, err := c.p.number(fmt.Sprintf("Enter recipe number to %s: ", verb))
	if err != nil {
		return nil, service.Principal{}, err
	}

	if c.listing == nil {
		if _, err := c.refresh(ctx); err != nil {
			c.report(err)
			return nil, service.Principal{}, nil
		}
	}
	if n > len(c.listing) {
		c.println("Recipe not found!")
		return nil, service.Principal{}, nil
	}

	p, err := c.principal(ctx)
	if err != nil {
		c.report(err)
		return nil, service.Principal{}, nil
	}
	recipe, err := c.app.Guard.View(ctx, p, c.listing[n-1])
	if err != nil {
		c.report(err)
		return nil, service.Principal{}, nil
	}
	return recipe, p, nil
}

func (c *Console) viewRecipe(ctx context.Context) error {
	recipe, _, err := c.pick(ctx, "view")
	if err != nil || recipe == nil {
		return err
	}

	rule := strings.Repeat("=", 50)
	c.println("\n" + rule)
	c.println("Recipe: " + recipe.Name)
	c.println("Created on: " + recipe.CreatedAt.UTC().Format(timeLayout))
	c.println("Last updated: " + recipe.UpdatedAt.UTC().Format(timeLayout))
	c.println("\nIngredients:\n" + recipe.Ingredients)
	c.println("\nInstructions:\n" + recipe.Instructions)
	c.println(rule)
	return nil
}

func (c *Console) editRecipe(ctx context.Context) error {
	recipe, p, err := c.pick(ctx, "edit")
	if err != nil || recipe == nil {
		return err
	}

	c.println("Press Enter to keep the current value.")
	var patch domain.RecipePatch
	fields := []struct {
		label   string
		current string
		target  **string
	}{
		{"Name", recipe.Name, &patch.Name},
		{"Ingredients", recipe.Ingredients, &patch.Ingredients},
		{"Instructions", recipe.Instructions, &patch.Instructions},
	}
	for _, f := range fields {
		answer, err := c.p.text(fmt.Sprintf("%s [%s]: ", f.label, f.current))
		if err != nil {
			return err
		}
		if answer != "" && answer != f.current {
			*f.target = &answer
		}
	}

	if patch.Name == nil && patch.Ingredients == nil && patch.Instructions == nil {
		c.println("Nothing to change.")
		return nil
	}
	updated, err := c.app.Guard.Edit(ctx, p, recipe.ID, patch)
	if err != nil {
		c.report(err)
		return nil
	}
	c.println(fmt.Sprintf("Recipe '%s' updated successfully!", updated.Name))
	return nil
}

func (c *Console) deleteRecipe(ctx context.Context) error {
	recipe, p, err := c.pick(ctx, "delete")
	if err != nil || recipe == nil {
		return err
	}

	ok, err := c.p.confirm(fmt.Sprintf("Delete '%s'?", recipe.Name))
	if err != nil {
		return err
	}
	if !ok {
		c.println("Kept.")
		return nil
	}
	if err := c.app.Guard.Delete(ctx, p, recipe.ID); err != nil {
		c.report(err)
		return nil
	}
	// positions shift after a delete
	c.listing = nil
	c.println(fmt.Sprintf("Recipe '%s' deleted.", recipe.Name))
	return nil
}

// report prints a user-facing message for err. Recipes owned by someone else
// read the same as missing ones.
func (c *Console) report(err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.println("Error: " + strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": "))
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.println("Error: email already exists!")
	case errors.Is(err, domain.ErrAuthentication):
		c.println("Please check your login details and try again.")
	case errors.Is(err, domain.ErrUnauthenticated):
		c.token, c.name, c.listing = "", "", nil
		c.println("Your session has ended. Please login again.")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPermissionDenied):
		c.println("Recipe not found!")
	default:
		c.logger.WithError(err).Error("console action failed")
		c.println("Something went wrong. Please try again.")
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.p.out, s)
}
