// Commande d'administration: migrations, codes d'inscription, comptes admin et rappels.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ensaj-backend/config"
	"ensaj-backend/database"
	"ensaj-backend/models"
	"ensaj-backend/services"

	"github.com/urfave/cli/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("❌ Erreur lors du chargement de la configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel))
	models.Location = cfg.Location()

	app := &cli.App{
		Name:  "ensajctl",
		Usage: "administration du backend ENSAJ",
		Commands: []*cli.Command{
			migrateCommand(cfg),
			codesCommand(cfg),
			usersCommand(cfg),
			remindersCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("❌ Échec de la commande", "error", err)
		os.Exit(1)
	}
}

// withDatabase ouvre la connexion MongoDB le temps d'une commande
func withDatabase(cfg *config.Config, fn func(ctx context.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := context.WithTimeout(c.Context, 2*time.Minute)
		defer cancel()

		if err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB); err != nil {
			return err
		}
		defer database.Close()

		return fn(ctx)
	}
}

func migrateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "migrations de la base",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "applique les migrations en attente",
				Action: withDatabase(cfg, func(ctx context.Context) error {
					return database.Migrate(database.Client, cfg.MongoDB)
				}),
			},
		},
	}
}

func codesCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "codes",
		Usage: "codes d'inscription",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "génère des codes aléatoires",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 10, Usage: "nombre de codes (1 à 100)"},
				},
				Action: func(c *cli.Context) error {
					count := c.Int("count")
					return withDatabase(cfg, func(ctx context.Context) error {
						codes := services.NewCodeService(database.NewRegistrationCodeRepository(database.DB))
						generated, err := codes.Generate(ctx, count, time.Now().In(cfg.Location()))
						if err != nil {
							return err
						}
						for _, code := range generated {
							fmt.Println(code.Code)
						}
						return nil
					})(c)
				},
			},
			{
				Name:  "list",
				Usage: "liste les codes et leur état",
				Action: withDatabase(cfg, func(ctx context.Context) error {
					codes := services.NewCodeService(database.NewRegistrationCodeRepository(database.DB))
					all, err := codes.List(ctx)
					if err != nil {
						return err
					}
					for _, code := range all {
						state := "libre"
						if code.IsUsed {
							state = "utilisé"
						}
						fmt.Printf("%s\t%s\n", code.Code, state)
					}
					return nil
				}),
			},
		},
	}
}

func usersCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "comptes utilisateurs",
		Subcommands: []*cli.Command{
			{
				Name:  "create-admin",
				Usage: "crée un administrateur, ou promeut le compte existant",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "nom", Required: true},
					&cli.StringFlag{Name: "prenom", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ENSAJ_ADMIN_PASSWORD"}},
				},
				Action: func(c *cli.Context) error {
					req := models.CreateUserRequest{
						Nom:      c.String("nom"),
						Prenom:   c.String("prenom"),
						Email:    c.String("email"),
						Password: c.String("password"),
					}
					return withDatabase(cfg, func(ctx context.Context) error {
						users := services.NewUserService(
							database.NewUserRepository(database.DB),
							database.NewEventRepository(database.DB),
							database.NewParticipationRepository(database.DB),
							database.NewFCMTokenRepository(database.DB),
						)
						user, err := users.CreateAdmin(ctx, req, time.Now().In(cfg.Location()))
						if err != nil {
							return err
						}
						slog.Info("✅ Administrateur prêt", "email", user.Email, "id", user.ID.Hex())
						return nil
					})(c)
				},
			},
		},
	}
}

func remindersCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "reminders",
		Usage: "rappels push des événements du lendemain",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "envoie les rappels une fois, sans attendre le cron",
				Action: withDatabase(cfg, func(ctx context.Context) error {
					if !cfg.UsesFCM() {
						return fmt.Errorf("firebase non configuré")
					}
					sender, err := services.NewFCMService(ctx, cfg.FirebaseCredentialsFile, cfg.FirebaseCredentialsJSON)
					if err != nil {
						return err
					}

					loc := cfg.Location()
					notifier := services.NewPushNotifier(database.NewFCMTokenRepository(database.DB), sender, loc)
					reminders := services.NewReminderCron(
						database.NewEventRepository(database.DB),
						database.NewParticipationRepository(database.DB),
						notifier,
						loc,
					)
					sent := reminders.Run(ctx)
					slog.Info("🔔 Rappels envoyés", "events", sent)
					return nil
				}),
			},
		},
	}
}
