package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/parallel"
	"github.com/oarkflow/mebel/internal/render"
	"github.com/oarkflow/mebel/internal/result"
)

var (
	userList  listFlags
	userInput userFlags
)

type userFlags struct {
	name     string
	email    string
	phone    string
	role     string
	status   string
	password string
	avatar   string
}

func (u *userFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&u.name, "name", "", "full name")
	fs.StringVar(&u.email, "email", "", "email address")
	fs.StringVar(&u.phone, "phone", "", "phone number")
	fs.StringVar(&u.role, "role", "", "role (admin|user)")
	fs.StringVar(&u.status, "status", "", "status (aktif|nonaktif)")
	fs.StringVar(&u.password, "password", "", "password (default from config on create)")
	fs.StringVar(&u.avatar, "avatar", "", `avatar URL or local file, "" removes it`)
}

func (u *userFlags) fields(fs *pflag.FlagSet) (gateway.UserFields, error) {
	var f gateway.UserFields
	if fs.Changed("name") {
		f.Name = gateway.Text(u.name)
	}
	if fs.Changed("email") {
		f.Email = gateway.Text(strings.TrimSpace(u.email))
	}
	if fs.Changed("phone") {
		f.Phone = gateway.Text(u.phone)
	}
	if fs.Changed("role") {
		role := strings.ToLower(u.role)
		if role != gateway.RoleAdmin && role != gateway.RoleUser {
			return f, fmt.Errorf("role must be %s or %s", gateway.RoleAdmin, gateway.RoleUser)
		}
		f.Role = gateway.Text(role)
	}
	if fs.Changed("status") {
		f.Status = gateway.StatusPtr(gateway.Status(u.status))
	}
	if fs.Changed("password") {
		f.Password = gateway.Text(u.password)
	}
	if fs.Changed("avatar") {
		img, err := imageInput(u.avatar)
		if err != nil {
			return f, err
		}
		f.Avatar = gateway.Text(img)
	}
	return f, nil
}

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}
		q, err := userList.query(c.UserView)
		if err != nil {
			return err
		}
		page, err := outcome(cmd.OutOrStdout(), c.Users.List(cmd.Context(), q))
		if err != nil {
			return err
		}
		render.Users(cmd.OutOrStdout(), page)
		return nil
	},
}

var usersBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through users interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}
		b := &browser[gateway.User]{
			ctl:     c.UserList(),
			render:  render.Users,
			filters: map[string]string{"st": "status"},
			toggle: func(ctx context.Context, id int64) result.Result[gateway.User] {
				current := c.Users.Get(ctx, id)
				if !current.OK() {
					return current
				}
				next, err := toggleStatus(current.Data().Status)
				if err != nil {
					return result.Fail[gateway.User](err)
				}
				return c.Users.UpdateStatus(ctx, id, next)
			},
		}
		return b.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		u, err := outcome(cmd.OutOrStdout(), c.Users.Get(cmd.Context(), id))
		if err != nil {
			return err
		}
		render.User(cmd.OutOrStdout(), u)
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a user",
	Long: `Add a user. Name, email and phone are required; role defaults to
user and the password to the configured default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := userInput.fields(cmd.Flags())
		if err != nil {
			return err
		}
		if err := fields.Validate(true); err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		u, err := outcome(cmd.OutOrStdout(), c.Users.Create(cmd.Context(), fields))
		if err != nil {
			return err
		}
		render.User(cmd.OutOrStdout(), u)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change a user",
	Long:  `Change a user. Only the flags given are sent.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		fields, err := userInput.fields(cmd.Flags())
		if err != nil {
			return err
		}
		if fields == (gateway.UserFields{}) {
			return fmt.Errorf("nothing to update")
		}
		if err := fields.Validate(false); err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		u, err := outcome(cmd.OutOrStdout(), c.Users.Update(cmd.Context(), id, fields))
		if err != nil {
			return err
		}
		render.User(cmd.OutOrStdout(), u)
		return nil
	},
}

var usersStatusCmd = &cobra.Command{
	Use:       "status ID STATUS",
	Short:     "Activate or deactivate a user",
	ValidArgs: []string{"aktif", "nonaktif"},
	Args:      cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status := gateway.Status(args[1])
		if !status.Toggleable() {
			return fmt.Errorf("status must be aktif or nonaktif")
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		_, err = outcome(cmd.OutOrStdout(), c.Users.UpdateStatus(cmd.Context(), id, status))
		return err
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		return deleteAll(cmd, ids, c.Users.Delete)
	},
}

// deleteWorkers bounds concurrent deletes.
const deleteWorkers = 4

// deleteAll deletes ids concurrently and reports each outcome in order.
func deleteAll(cmd *cobra.Command, ids []int64, del func(context.Context, int64) result.Result[struct{}]) error {
	results, err := parallel.Map(cmd.Context(), ids, deleteWorkers, func(ctx context.Context, id int64) (result.Result[struct{}], error) {
		return del(ctx, id), nil
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, res := range results {
		if res.OK() {
			fmt.Fprintf(out, "✓ #%d: %s\n", ids[i], res.Message())
			continue
		}
		failed++
		log.Debug("Delete failed", "id", ids[i], "error", res.Cause())
		fmt.Fprintf(out, "✗ #%d: %s\n", ids[i], res.Err())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deletes failed", failed, len(ids))
	}
	return nil
}

func init() {
	userList.register(usersListCmd,
		filterFlag{flag: "status", filter: "status", usage: "filter by status (aktif|nonaktif)"},
	)
	userInput.register(usersCreateCmd.Flags())
	userInput.register(usersUpdateCmd.Flags())

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersBrowseCmd)
	usersCmd.AddCommand(usersShowCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersStatusCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}
