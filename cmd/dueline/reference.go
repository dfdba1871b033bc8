package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dueline/internal/domain"
)

func removeCmd(kind string, remove func(context.Context, *session, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a " + kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				if err := remove(ctx, s, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "removed %s %s\n", kind, args[0])
				return nil
			})
		},
	}
}

func entityCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "entity", Short: "Manage counterparty entities"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				items, err := s.engine().ListEntities(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable("ID", "Nome", "CNPJ", "Endereço")
				for _, e := range items {
					tw.AppendRow([]any{e.ID, e.Name, e.TaxID, e.Address})
				}
				tw.Render()
				return nil
			})
		},
	})

	var ent domain.Entity
	save := func(update bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				var (
					saved domain.Entity
					err   error
				)
				if update {
					ent.ID = args[0]
					saved, err = s.engine().UpdateEntity(ctx, ent)
				} else {
					saved, err = s.engine().CreateEntity(ctx, ent)
				}
				if err != nil {
					return err
				}
				return printJSON(saved)
			})
		}
	}
	add := &cobra.Command{Use: "add", Short: "Add an entity", RunE: save(false)}
	update := &cobra.Command{Use: "update <id>", Short: "Replace an entity's fields", Args: cobra.ExactArgs(1), RunE: save(true)}
	for _, c := range []*cobra.Command{add, update} {
		c.Flags().StringVar(&ent.Name, "name", "", "name")
		c.Flags().StringVar(&ent.TaxID, "tax-id", "", "CNPJ")
		c.Flags().StringVar(&ent.Address, "address", "", "address")
		_ = c.MarkFlagRequired("name")
		cmd.AddCommand(c)
	}
	cmd.AddCommand(removeCmd("entity", func(ctx context.Context, s *session, id string) error {
		return s.engine().DeleteEntity(ctx, id)
	}))
	return cmd
}

func responsibleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "responsible", Short: "Manage the responsible roster"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List responsibles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				items, err := s.engine().ListResponsibles(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable("ID", "Nome", "E-mail", "Telefone", "Departamento")
				for _, p := range items {
					tw.AppendRow([]any{p.ID, p.Name, p.Email, p.Phone, p.Department})
				}
				tw.Render()
				return nil
			})
		},
	})

	var p domain.RosterResponsible
	save := func(update bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				var (
					saved domain.RosterResponsible
					err   error
				)
				if update {
					p.ID = args[0]
					saved, err = s.engine().UpdateResponsible(ctx, p)
				} else {
					saved, err = s.engine().CreateResponsible(ctx, p)
				}
				if err != nil {
					return err
				}
				return printJSON(saved)
			})
		}
	}
	add := &cobra.Command{Use: "add", Short: "Add a responsible", RunE: save(false)}
	update := &cobra.Command{Use: "update <id>", Short: "Replace a responsible's fields", Args: cobra.ExactArgs(1), RunE: save(true)}
	for _, c := range []*cobra.Command{add, update} {
		c.Flags().StringVar(&p.Name, "name", "", "name")
		c.Flags().StringVar(&p.Email, "email", "", "e-mail")
		c.Flags().StringVar(&p.Phone, "phone", "", "phone")
		c.Flags().StringVar(&p.Department, "department", "", "department")
		_ = c.MarkFlagRequired("name")
		cmd.AddCommand(c)
	}
	cmd.AddCommand(removeCmd("responsible", func(ctx context.Context, s *session, id string) error {
		return s.engine().DeleteResponsible(ctx, id)
	}))
	return cmd
}

func typeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "type", Short: "Manage instrument types"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List instrument types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				items, err := s.engine().ListTypes(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable("ID", "Nome", "Descrição")
				for _, t := range items {
					tw.AppendRow([]any{t.ID, t.Name, t.Description})
				}
				tw.Render()
				return nil
			})
		},
	})

	var t domain.InstrumentType
	save := func(update bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				var (
					saved domain.InstrumentType
					err   error
				)
				if update {
					t.ID = args[0]
					saved, err = s.engine().UpdateType(ctx, t)
				} else {
					saved, err = s.engine().CreateType(ctx, t)
				}
				if err != nil {
					return err
				}
				return printJSON(saved)
			})
		}
	}
	add := &cobra.Command{Use: "add", Short: "Add an instrument type", RunE: save(false)}
	update := &cobra.Command{Use: "update <id>", Short: "Replace a type's fields", Args: cobra.ExactArgs(1), RunE: save(true)}
	for _, c := range []*cobra.Command{add, update} {
		c.Flags().StringVar(&t.Name, "name", "", "name")
		c.Flags().StringVar(&t.Description, "description", "", "description")
		_ = c.MarkFlagRequired("name")
		cmd.AddCommand(c)
	}
	cmd.AddCommand(removeCmd("type", func(ctx context.Context, s *session, id string) error {
		return s.engine().DeleteType(ctx, id)
	}))
	return cmd
}
