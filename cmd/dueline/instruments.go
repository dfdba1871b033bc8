package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dueline/internal/domain"
	"dueline/internal/engine"
	"dueline/internal/export"
	"dueline/internal/format"
	"dueline/internal/tracking"
)

func instrumentCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "instrument", Aliases: []string{"in"}, Short: "Manage instruments"}
	cmd.AddCommand(instrumentListCmd())
	cmd.AddCommand(instrumentShowCmd())
	cmd.AddCommand(instrumentCreateCmd())
	cmd.AddCommand(instrumentUpdateCmd())
	cmd.AddCommand(instrumentDeleteCmd())
	cmd.AddCommand(instrumentSignCmd())
	cmd.AddCommand(instrumentHistoryCmd())
	return cmd
}

func instrumentListCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instruments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				filter, err := f.filter(s.engine().Location())
				if err != nil {
					return err
				}
				items, err := s.engine().Instruments(ctx, filter)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				printInstruments(s, items)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func printInstruments(s *session, items []domain.Instrument) {
	now, horizon := s.engine().CurrentTime(), s.engine().Horizon()
	tw := newTable("ID", "Título", "Status", "Urgência", "Vencimento", "Valor", "Responsáveis")
	for _, in := range items {
		tw.AppendRow([]any{
			in.ID,
			in.Title,
			format.StatusText(in.Status),
			urgencyText(tracking.Classify(in.DueDate, now, horizon), tracking.DaysUntil(in.DueDate, now)),
			s.formatter.Date(in.DueDate),
			format.OptionalCurrency(in.Value, "N/A"),
			export.ResponsibleNames(in),
		})
	}
	tw.Render()
}

func urgencyText(u tracking.Urgency, days int) string {
	switch u {
	case tracking.UrgencyExpired:
		return "Vencido"
	case tracking.UrgencyExpiringSoon:
		if days == 1 {
			return "Vence em 1 dia"
		}
		return fmt.Sprintf("Vence em %d dias", days)
	}
	return "-"
}

func instrumentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an instrument with responsibles and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				in, err := s.engine().GetInstrument(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(in)
				}
				printInstrument(s, in)
				return nil
			})
		},
	}
}

func printInstrument(s *session, in domain.Instrument) {
	f := s.formatter
	fmt.Fprintf(out, "%s\n%s\n\n", in.Title, strings.Repeat("=", len([]rune(in.Title))))
	fields := [][2]string{
		{"ID", in.ID},
		{"Status", format.StatusText(in.Status)},
		{"Prioridade", format.PriorityText(in.Priority)},
		{"Tipo", in.TypeID},
		{"Entidades", export.EntityNames(in)},
		{"Envio", f.Date(in.SentDate)},
		{"Vencimento", f.Date(in.DueDate)},
		{"Assinatura", f.OptionalDate(in.SignDate, "N/A")},
		{"Valor", format.OptionalCurrency(in.Value, "N/A")},
		{"Tags", strings.Join(in.Tags, ", ")},
	}
	for _, kv := range fields {
		fmt.Fprintf(out, "%-12s %s\n", kv[0]+":", kv[1])
	}
	if in.Description != "" {
		fmt.Fprintf(out, "\n%s\n", in.Description)
	}
	fmt.Fprintln(out)

	people := newTable("ID", "Responsável", "Departamento", "Assinatura", "Data")
	for _, p := range in.Responsibles {
		people.AppendRow([]any{p.ID, p.Name, p.Department, format.SignatureText(p.SignatureStatus), f.OptionalDate(p.SignatureDate, "-")})
	}
	people.Render()
	fmt.Fprintln(out)
	printMovements(s, in.Movements)
}

func printMovements(s *session, items []domain.Movement) {
	tw := newTable("#", "Data", "Status", "Descrição", "Usuário")
	for _, m := range items {
		tw.AppendRow([]any{m.ID, s.formatter.DateTime(m.Date), format.StatusText(m.Status), m.Description, m.UserName})
	}
	tw.Render()
}

func instrumentCreateCmd() *cobra.Command {
	var form engine.InstrumentForm
	var due, priority string
	var value float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an instrument",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				d, err := engine.ParseDueDate(due, s.engine().Location())
				if err != nil {
					return err
				}
				form.DueDate = d
				form.Priority = domain.Priority(priority)
				if cmd.Flags().Changed("value") {
					form.Value = &value
				}
				in, err := s.engine().CreateInstrument(ctx, form)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(in)
				}
				fmt.Fprintf(out, "created instrument %s\n", in.ID)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&form.Title, "title", "", "title")
	flags.StringVar(&form.Description, "description", "", "description")
	flags.StringSliceVar(&form.EntityIDs, "entity", nil, "entity id (repeatable)")
	flags.StringSliceVar(&form.ResponsibleIDs, "responsible", nil, "responsible id (repeatable)")
	flags.StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&priority, "priority", "", "low, medium or high (default medium)")
	flags.StringVar(&form.TypeID, "type", "", "instrument type id")
	flags.Float64Var(&value, "value", 0, "value in BRL")
	flags.StringSliceVar(&form.Tags, "tag", nil, "tag (repeatable)")
	flags.StringSliceVar(&form.Attachments, "attachment", nil, "attachment name (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func instrumentUpdateCmd() *cobra.Command {
	var title, description, due, priority, typeID, status, note string
	var entities, responsibles, tags, attachments []string
	var value float64
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an instrument; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				patch := engine.InstrumentPatch{Note: note}
				if changed("title") {
					patch.Title = &title
				}
				if changed("description") {
					patch.Description = &description
				}
				if changed("due") {
					d, err := engine.ParseDueDate(due, s.engine().Location())
					if err != nil {
						return err
					}
					patch.DueDate = &d
				}
				if changed("priority") {
					p := domain.Priority(priority)
					patch.Priority = &p
				}
				if changed("type") {
					patch.TypeID = &typeID
				}
				if changed("status") {
					st := domain.InstrumentStatus(status)
					patch.Status = &st
				}
				if changed("value") {
					patch.Value = &value
				}
				if changed("entity") {
					patch.EntityIDs = nonNilSlice(entities)
				}
				if changed("responsible") {
					patch.ResponsibleIDs = nonNilSlice(responsibles)
				}
				if changed("tag") {
					patch.Tags = nonNilSlice(tags)
				}
				if changed("attachment") {
					patch.Attachments = nonNilSlice(attachments)
				}
				in, err := s.engine().UpdateInstrument(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(in)
				}
				fmt.Fprintf(out, "updated instrument %s (%s)\n", in.ID, format.StatusText(in.Status))
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "title")
	flags.StringVar(&description, "description", "", "description")
	flags.StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&priority, "priority", "", "low, medium or high")
	flags.StringVar(&typeID, "type", "", "instrument type id")
	flags.StringVar(&status, "status", "", "pending, in_progress, signed or expired")
	flags.StringVar(&note, "note", "", "description recorded on the movement")
	flags.Float64Var(&value, "value", 0, "value in BRL")
	flags.StringSliceVar(&entities, "entity", nil, "replace entities (empty clears)")
	flags.StringSliceVar(&responsibles, "responsible", nil, "replace responsibles (empty clears)")
	flags.StringSliceVar(&tags, "tag", nil, "replace tags (empty clears)")
	flags.StringSliceVar(&attachments, "attachment", nil, "replace attachments (empty clears)")
	return cmd
}

// nonNilSlice keeps "--tag=" meaning clear rather than unchanged.
func nonNilSlice(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func instrumentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an instrument and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				if err := s.engine().DeleteInstrument(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted instrument %s\n", args[0])
				return nil
			})
		},
	}
}

func instrumentSignCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "sign <id> <responsible-id>",
		Short: "Set or toggle a responsible's signature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				in, err := s.engine().SetSignature(ctx, args[0], args[1], domain.SignatureStatus(status))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(in)
				}
				i := in.Responsible(args[1])
				fmt.Fprintf(out, "%s: %s\n", in.Responsibles[i].Name, format.SignatureText(in.Responsibles[i].SignatureStatus))
				if in.FullySigned() {
					fmt.Fprintln(out, "all responsibles have signed")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending or signed (omit to toggle)")
	return cmd
}

func instrumentHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the movement history of an instrument",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				items, err := s.engine().History(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				printMovements(s, items)
				return nil
			})
		},
	}
}

func dashboardCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Metrics, priorities and the filtered instrument list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				filter, err := f.filter(s.engine().Location())
				if err != nil {
					return err
				}
				d, err := s.engine().Dashboard(ctx, filter)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(d)
				}
				m := d.Metrics
				tw := newTable("Total", "Assinados", "Pendentes", "Em Andamento", "Vencidos", "Vencendo", "Conclusão")
				tw.AppendRow([]any{m.Total, m.Signed, m.Pending, m.InProgress, m.Expired, m.ExpiringSoon, fmt.Sprintf("%d%%", m.Completion)})
				tw.Render()
				fmt.Fprintln(out)
				printPriorities(s, d.Priorities)
				fmt.Fprintln(out)
				printInstruments(s, d.Instruments)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func printPriorities(s *session, sel tracking.Selection) {
	if sel.Empty() {
		fmt.Fprintln(out, "Nenhuma prioridade para hoje")
		return
	}
	tw := newTable("ID", "Título", "Motivo", "Vencimento")
	for _, item := range sel.Items {
		tw.AppendRow([]any{item.Instrument.ID, item.Instrument.Title, item.Reason, s.formatter.Date(item.Instrument.DueDate)})
	}
	tw.Render()
}

func priorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority",
		Short: "What needs attention today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				sel, err := s.engine().Priorities(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(sel)
				}
				printPriorities(s, sel)
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var f filterFlags
	var formatName, output, instrumentID, title string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered list (pdf, xlsx, csv) or one instrument as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				names, err := s.engine().TypeNames(ctx)
				if err != nil {
					return err
				}
				if title == "" {
					title = s.app.Config.Export.Title
				}
				r := export.Report{
					Title:       title,
					GeneratedAt: s.engine().CurrentTime(),
					Formatter:   s.formatter,
					TypeNames:   names,
				}
				var buf bytes.Buffer
				var name string
				if instrumentID != "" {
					in, err := s.engine().GetInstrument(ctx, instrumentID)
					if err != nil {
						return err
					}
					if err := export.DetailPDF(&buf, r, in); err != nil {
						return err
					}
					name = export.DetailFilename(in.Title)
				} else {
					fm, err := export.ParseFormat(formatName)
					if err != nil {
						return err
					}
					filter, err := f.filter(s.engine().Location())
					if err != nil {
						return err
					}
					items, err := s.engine().Instruments(ctx, filter)
					if err != nil {
						return err
					}
					if err := export.Write(&buf, fm, r, items); err != nil {
						return err
					}
					name = export.ListFilename(fm)
				}
				if output == "-" {
					_, err := out.Write(buf.Bytes())
					return err
				}
				if output == "" {
					output = name
				}
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s (%d bytes)\n", output, buf.Len())
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVarP(&formatName, "format", "f", "pdf", "pdf, xlsx or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: generated name, - for stdout)")
	cmd.Flags().StringVar(&instrumentID, "instrument", "", "export one instrument as PDF")
	cmd.Flags().StringVar(&title, "title", "", "report title (default from config)")
	return cmd
}
