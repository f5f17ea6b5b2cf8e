package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

var errMissingCredentials = errors.New("--email and --password are required for this command")

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "clinicctl",
		Usage:   "Administer a BillyBuddy clinic backend",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "clinic backend address",
				Sources: cli.EnvVars("BILLYBUDDY_BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "project key sent as the apikey header",
				Sources: cli.EnvVars("BILLYBUDDY_BACKEND_KEY"),
			},
			&cli.StringFlag{
				Name:    "email",
				Usage:   "administrator email",
				Sources: cli.EnvVars("CLINICCTL_EMAIL"),
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "administrator password",
				Sources: cli.EnvVars("CLINICCTL_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "otp",
				Usage:   "authenticator code when the administrator has a second factor",
				Sources: cli.EnvVars("CLINICCTL_OTP"),
			},
			&cli.BoolFlag{Name: "json", Usage: "print raw JSON"},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger := slogx.New(slogx.Config{
				Service: "clinicctl",
				Version: version,
				Env:     "cli",
				Level:   cmd.String("log-level"),
				Format:  "text",
				Output:  os.Stderr,
			})
			return slogx.WithContext(ctx, logger), nil
		},
		Commands: []*cli.Command{
			healthCommand(),
			bootstrapCommand(),
			vetCommand(),
			recoverCommand(),
		},
	}
}

func client(cmd *cli.Command) *clinicsdk.Client {
	return clinicsdk.New(cmd.String("url"), cmd.String("api-key"))
}

// signIn opens an administrator session, answering a second factor
// challenge with --otp.
func signIn(ctx context.Context, cmd *cli.Command) (*clinicsdk.Session, error) {
	email, password := cmd.String("email"), cmd.String("password")
	if email == "" || password == "" {
		return nil, errMissingCredentials
	}

	c := client(cmd)
	sess, err := c.SignInWithPassword(ctx, email, password)

	var challenge *clinicsdk.MFARequiredError
	if errors.As(err, &challenge) {
		code := cmd.String("otp")
		if code == "" {
			return nil, errors.New("a second factor is required, pass --otp")
		}
		sess, err = c.VerifyMFA(ctx, challenge.MFAToken, code)
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	slogx.FromContext(ctx).Debug("signed in", "user_id", sess.UserID(), "role", sess.Role())
	return sess, nil
}

// withSession signs in, runs fn and signs out again.
func withSession(fn func(ctx context.Context, cmd *cli.Command, sess *clinicsdk.Session) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		sess, err := signIn(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := sess.SignOut(context.WithoutCancel(ctx)); err != nil {
				slogx.FromContext(ctx).Warn("sign out failed", slog.String("error", err.Error()))
			}
		}()
		return fn(ctx, cmd, sess)
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that the backend is live and its database ready",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c := client(cmd)
			live, err := c.Livez(ctx)
			if err != nil {
				return fmt.Errorf("livez: %w", err)
			}
			ready, err := c.Readyz(ctx)
			if err != nil {
				return fmt.Errorf("readyz: %w", err)
			}
			if cmd.Bool("json") {
				return printJSON(cmd, map[string]any{"live": live, "ready": ready})
			}
			out := newTable(cmd)
			out.row("live", live.Status, live.Version, live.Uptime)
			out.row("ready", ready.Status)
			return out.flush()
		},
	}
}

func bootstrapCommand() *cli.Command {
	return &cli.Command{
		Name:  "bootstrap",
		Usage: "Create the first administrator on an empty backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Required: true, Usage: "bootstrap token", Sources: cli.EnvVars("BOOTSTRAP_TOKEN")},
			&cli.StringFlag{Name: "admin-email", Required: true},
			&cli.StringFlag{Name: "admin-password", Required: true},
			&cli.StringFlag{Name: "name", Value: "Administrator", Usage: "administrator full name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, err := client(cmd).Bootstrap(ctx, cmd.String("token"), clinicsdk.BootstrapRequest{
				Email:    cmd.String("admin-email"),
				Password: cmd.String("admin-password"),
				FullName: cmd.String("name"),
			})
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			if cmd.Bool("json") {
				return printJSON(cmd, res)
			}
			fmt.Fprintf(cmd.Root().Writer, "administrator created: %s\n", res.UserID)
			return nil
		},
	}
}

func vetCommand() *cli.Command {
	return &cli.Command{
		Name:  "vet",
		Usage: "Manage veterinarians (administrator only)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List veterinarians, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "ATIVO, INATIVO or PENDENTE"},
					&cli.IntFlag{Name: "limit", Value: 100},
				},
				Action: withSession(func(ctx context.Context, cmd *cli.Command, sess *clinicsdk.Session) error {
					vets, err := sess.ListVeterinarians(ctx, clinicsdk.ListOptions{
						Status: strings.ToUpper(cmd.String("status")),
						Limit:  int(cmd.Int("limit")),
					})
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return printJSON(cmd, vets)
					}
					out := newTable(cmd)
					out.row("ID", "NAME", "CRMV", "STATUS", "CLINIC")
					for _, v := range vets {
						name := ""
						if v.Profile != nil {
							name = v.Profile.FullName
						}
						out.row(v.ID, name, v.CRMV+"/"+v.UF, v.Status, v.ClinicName)
					}
					return out.flush()
				}),
			},
			{
				Name:  "counts",
				Usage: "Count veterinarians by status",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, sess *clinicsdk.Session) error {
					counts, err := sess.VeterinarianCounts(ctx)
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return printJSON(cmd, counts)
					}
					out := newTable(cmd)
					out.row(clinicsdk.VetStatusActive, counts.Active)
					out.row(clinicsdk.VetStatusInactive, counts.Inactive)
					out.row(clinicsdk.VetStatusPending, counts.Pending)
					return out.flush()
				}),
			},
			{
				Name:  "create",
				Usage: "Register a veterinarian and print the temporary password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "vet-email", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "cpf"},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "crmv", Required: true},
					&cli.StringFlag{Name: "uf"},
					&cli.StringFlag{Name: "clinic"},
					&cli.StringFlag{Name: "contract-valid-until", Usage: "YYYY-MM-DD"},
					&cli.StringFlag{
						Name:    "portal-url",
						Value:   "http://localhost:8081",
						Usage:   "portal address used in the welcome message",
						Sources: cli.EnvVars("PORTAL_BASE_URL"),
					},
				},
				Action: withSession(func(ctx context.Context, cmd *cli.Command, sess *clinicsdk.Session) error {
					res, err := sess.CreateVeterinarian(ctx, clinicsdk.CreateVeterinarianRequest{
						Email:              cmd.String("vet-email"),
						FullName:           cmd.String("name"),
						CPF:                cmd.String("cpf"),
						Phone:              cmd.String("phone"),
						CRMV:               cmd.String("crmv"),
						UF:                 strings.ToUpper(cmd.String("uf")),
						ClinicName:         cmd.String("clinic"),
						ContractValidUntil: cmd.String("contract-valid-until"),
					})
					if err != nil {
						return err
					}
					link := views.WelcomeLink(cmd.String("phone"), cmd.String("name"), res.TempPassword, cmd.String("portal-url"))
					if cmd.Bool("json") {
						return printJSON(cmd, map[string]any{"result": res, "welcome_link": link})
					}
					out := newTable(cmd)
					out.row("id", res.Veterinarian.ID)
					out.row("status", res.Veterinarian.Status)
					out.row("temporary password", res.TempPassword)
					if link != "" {
						out.row("welcome message", link)
					}
					return out.flush()
				}),
			},
			{
				Name:      "status",
				Usage:     "Set a veterinarian's status",
				ArgsUsage: "<vet-id> <ATIVO|INATIVO|PENDENTE>",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, sess *clinicsdk.Session) error {
					if cmd.NArg() != 2 {
						return cli.Exit("usage: clinicctl vet status <vet-id> <status>", 2)
					}
					v, err := sess.SetVeterinarianStatus(ctx, cmd.Args().Get(0), strings.ToUpper(cmd.Args().Get(1)))
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return printJSON(cmd, v)
					}
					fmt.Fprintf(cmd.Root().Writer, "%s is now %s\n", v.ID, v.Status)
					return nil
				}),
			},
			{
				Name:      "reset-password",
				Usage:     "Send a password recovery token to a veterinarian",
				ArgsUsage: "<vet-id>",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, sess *clinicsdk.Session) error {
					if cmd.NArg() != 1 {
						return cli.Exit("usage: clinicctl vet reset-password <vet-id>", 2)
					}
					if err := sess.ResetVeterinarianPassword(ctx, cmd.Args().First()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, "recovery token issued")
					return nil
				}),
			},
		},
	}
}

func recoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "recover",
		Usage: "Password recovery",
		Commands: []*cli.Command{
			{
				Name:      "request",
				Usage:     "Issue a recovery token for an account",
				ArgsUsage: "<email>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 1 {
						return cli.Exit("usage: clinicctl recover request <email>", 2)
					}
					if err := client(cmd).ResetPasswordForEmail(ctx, cmd.Args().First()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, "if the account exists a recovery token was issued")
					return nil
				},
			},
			{
				Name:  "confirm",
				Usage: "Set a new password with a recovery token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
					&cli.StringFlag{Name: "new-password", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := client(cmd).ConfirmPasswordReset(ctx, cmd.String("token"), cmd.String("new-password")); err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, "password updated")
					return nil
				},
			},
		},
	}
}
