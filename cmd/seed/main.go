package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go-leave/internal/app"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/employee"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	root := &cli.Command{
		Name:  "seed",
		Usage: "operator tasks for a fresh deployment",
		Commands: []*cli.Command{
			hrCommand(),
			tokenCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func hrCommand() *cli.Command {
	return &cli.Command{
		Name:  "hr",
		Usage: "create an HR employee",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "department", Value: "Human Resources"},
			&cli.StringFlag{Name: "joining-date", Required: true, Usage: "YYYY-MM-DD"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req := employee.CreateEmployeeRequest{
				Name:        c.String("name"),
				Email:       c.String("email"),
				Department:  c.String("department"),
				JoiningDate: c.String("joining-date"),
			}
			// Same rules gin applies to the HTTP body.
			v := validator.New(validator.WithRequiredStructEnabled())
			v.SetTagName("binding")
			if err := v.Struct(req); err != nil {
				return fmt.Errorf("invalid employee: %w", err)
			}

			return withAdmin(ctx, func(admin *app.Admin) error {
				resp, err := admin.SeedHR(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(resp)
			})
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an access token for an employee",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "employee-id", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withAdmin(ctx, func(admin *app.Admin) error {
				resp, err := admin.IssueToken(ctx, c.String("employee-id"))
				if err != nil {
					return err
				}
				return printJSON(resp)
			})
		},
	}
}

func withAdmin(ctx context.Context, fn func(*app.Admin) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := bootstrap.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	conn, err := app.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(app.NewAdmin(cfg, conn, logger))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
