package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dueline/internal/domain"
)

func notificationCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "notification", Aliases: []string{"notif"}, Short: "Read and refresh notifications"}
	cmd.AddCommand(notificationListCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				return s.engine().MarkNotificationRead(ctx, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				n, err := s.engine().MarkAllNotificationsRead(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d notifications marked read\n", n)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Emit notifications for expired and expiring instruments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				created, err := s.engine().RefreshDueNotifications(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				printNotifications(s, created)
				return nil
			})
		},
	})
	return cmd
}

func notificationListCmd() *cobra.Command {
	var unread bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				items, err := s.engine().ListNotifications(ctx, unread)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				printNotifications(s, items)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	return cmd
}

func printNotifications(s *session, items []domain.Notification) {
	tw := newTable("ID", "", "Data", "Título", "Mensagem")
	for _, n := range items {
		mark := " "
		if !n.Read {
			mark = "•"
		}
		tw.AppendRow([]any{n.ID, mark, s.formatter.DateTime(n.Date), n.Title, n.Message})
	}
	tw.Render()
}
