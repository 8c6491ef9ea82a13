// ABOUTME: Account commands: login, logout, register, whoami and password
// ABOUTME: Credentials come from flags, stdin or an interactive prompt

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rayanebsh/Pathwayfr/internal/auth"
	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

var (
	accountEmail  string
	passwordStdin bool
	firstName     string
	lastName      string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Run: func(cmd *cobra.Command, args []string) {
		in := auth.LoginInput{Email: accountEmail}
		if err := readPassword(cmd, &in.Password); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}
		if err := ask(
			field{title: "Email", value: &in.Email},
			field{title: "Mot de passe", value: &in.Password, password: true},
		); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}

		ctx, cancel := signalContext()
		defer cancel()
		exit(runLogin(ctx, cmd.OutOrStdout(), in))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runLogout(ctx, cmd.OutOrStdout()))
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Run: func(cmd *cobra.Command, args []string) {
		in := auth.RegisterInput{FirstName: firstName, LastName: lastName, Email: accountEmail}
		if err := readPassword(cmd, &in.Password); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}
		if err := ask(
			field{title: "Prénom", value: &in.FirstName},
			field{title: "Nom", value: &in.LastName},
			field{title: "Email", value: &in.Email},
			field{title: "Mot de passe (6 caractères minimum)", value: &in.Password, password: true},
		); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}

		ctx, cancel := signalContext()
		defer cancel()
		exit(runRegister(ctx, cmd.OutOrStdout(), in))
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runWhoami(ctx, cmd.OutOrStdout()))
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Forgotten, reset and change password",
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Send a reset link by email",
	Run: func(cmd *cobra.Command, args []string) {
		in := auth.ForgotInput{Email: accountEmail}
		if err := ask(field{title: "Email", value: &in.Email}); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}

		ctx, cancel := signalContext()
		defer cancel()
		exit(runForgot(ctx, cmd.OutOrStdout(), in))
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset <token>",
	Short: "Set a new password with the token from the reset link",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in := auth.ResetInput{Token: args[0]}
		if err := readPassword(cmd, &in.Password); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}
		if passwordStdin {
			in.Confirmation = in.Password
		}
		if err := ask(
			field{title: "Nouveau mot de passe", value: &in.Password, password: true},
			field{title: "Confirmation", value: &in.Confirmation, password: true},
		); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}

		ctx, cancel := signalContext()
		defer cancel()
		exit(runReset(ctx, cmd.OutOrStdout(), in))
	},
}

var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the password of the logged-in account",
	Run: func(cmd *cobra.Command, args []string) {
		var in auth.ChangeInput
		if err := ask(
			field{title: "Mot de passe actuel", value: &in.Current, password: true},
			field{title: "Nouveau mot de passe", value: &in.New, password: true},
		); err != nil {
			exit(report(cmd.OutOrStdout(), err))
		}

		ctx, cancel := signalContext()
		defer cancel()
		exit(runChange(ctx, cmd.OutOrStdout(), in))
	},
}

func init() {
	loginCmd.Flags().StringVar(&accountEmail, "email", "", "Account email")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	registerCmd.Flags().StringVar(&accountEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	registerCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	passwordForgotCmd.Flags().StringVar(&accountEmail, "email", "", "Account email")
	passwordResetCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the new password from stdin")

	passwordCmd.AddCommand(passwordForgotCmd, passwordResetCmd, passwordChangeCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, passwordCmd)
}

func readPassword(cmd *cobra.Command, dst *string) error {
	if !passwordStdin {
		return nil
	}
	p, err := readSecret(cmd.InOrStdin())
	if err != nil {
		return err
	}
	*dst = p
	return nil
}

// loginOutput is the --json shape of a login
type loginOutput struct {
	User *model.UserSummary `json:"user,omitempty"`
	Next string             `json:"next"`
}

func runLogin(ctx context.Context, w io.Writer, in auth.LoginInput) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	res, err := e.auth.Login(ctx, in)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, loginOutput{User: res.User, Next: res.Next.String()})
	}

	name := in.Email
	if res.User != nil && res.User.FullName() != "" {
		name = res.User.FullName()
	}
	fmt.Fprintf(w, "Connecté : %s\n", name)
	if res.Next == auth.DestProfileSetup {
		fmt.Fprintln(w, "Votre profil académique est incomplet. Lancez « pathwayfr profile setup ».")
	}
	return exitOK
}

func runLogout(ctx context.Context, w io.Writer) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	if err := e.auth.Logout(ctx); err != nil {
		return report(w, err)
	}
	return message(w, auth.MsgLogoutDone)
}

func runRegister(ctx context.Context, w io.Writer, in auth.RegisterInput) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	msg, err := e.auth.Register(ctx, in)
	if err != nil {
		return report(w, err)
	}
	if msg == "" {
		msg = "Compte créé, vous pouvez vous connecter"
	}
	return message(w, msg)
}

// whoamiOutput is the --json shape of whoami
type whoamiOutput struct {
	User      *model.UserSummary `json:"user"`
	ExpiresAt *time.Time         `json:"token_expires_at,omitempty"`
}

func runWhoami(ctx context.Context, w io.Writer) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	user, err := e.client.Me(ctx)
	if err != nil {
		return report(w, err)
	}

	var expires *time.Time
	now := time.Now()
	if claims, err := e.sess.Claims(); err == nil {
		if left, ok := claims.ExpiresIn(now); ok {
			t := now.Add(left)
			expires = &t
		}
	}

	if IsJSONOutput() {
		return writeJSON(w, whoamiOutput{User: user, ExpiresAt: expires})
	}
	subscription := "Gratuit"
	if user.SubscriptionActive() {
		subscription = "Premium"
	}
	rows := [][2]string{
		{"Nom", user.FullName()},
		{"Email", user.Email},
		{"Rôle", user.Role},
		{"Abonnement", subscription},
	}
	if user.CreatedAt != "" {
		rows = append(rows, [2]string{"Inscrit", core.Since(user.CreatedAt, now)})
	}
	if expires != nil {
		rows = append(rows, [2]string{"Jeton", "expire " + core.RelTime(*expires, now)})
	}
	table(w, rows)
	return exitOK
}

func runForgot(ctx context.Context, w io.Writer, in auth.ForgotInput) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	msg, err := e.auth.Forgot(ctx, in)
	if err != nil {
		return report(w, err)
	}
	return message(w, msg)
}

func runReset(ctx context.Context, w io.Writer, in auth.ResetInput) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	msg, err := e.auth.Reset(ctx, in)
	if err != nil {
		return report(w, err)
	}
	return message(w, msg)
}

func runChange(ctx context.Context, w io.Writer, in auth.ChangeInput) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	msg, err := e.auth.Change(ctx, in)
	if err != nil {
		return report(w, err)
	}
	if msg == "" {
		msg = "Mot de passe modifié"
	}
	return message(w, msg)
}

// message prints a success sentence, or {"message": ...} with --json
func message(w io.Writer, msg string) int {
	if IsJSONOutput() {
		return writeJSON(w, model.MessageResponse{Message: msg})
	}
	fmt.Fprintln(w, msg)
	return exitOK
}
