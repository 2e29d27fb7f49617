package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	"github.com/listenupapp/fieldcodec/internal/service"
	"github.com/listenupapp/fieldcodec/internal/store"
)

func contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage contacts",
	}
	cmd.AddCommand(contactsAddCmd(), contactsListCmd(), contactsGetCmd(), contactsDeleteCmd())
	return cmd
}

// optional returns a raw input for a set flag and NULL otherwise.
func optional[T any](cmd *cobra.Command, name, value string) codec.Input[T] {
	if !cmd.Flags().Changed(name) {
		return codec.Null[T]()
	}
	return codec.Raw[T](value)
}

func contactsAddCmd() *cobra.Command {
	var slug, phone, lucky string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := cur.contacts.Create(cmd.Context(), service.ContactInput{
				Slug:         optional[codec.Slug](cmd, "slug", slug),
				Phone:        optional[codec.Phone](cmd, "phone", phone),
				LuckyNumbers: optional[codec.IntList](cmd, "lucky-numbers", lucky),
			})
			if err != nil {
				return err
			}
			return cur.printJSON(cur.contacts.View(c))
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "slug (defaults to the next id)")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&lucky, "lucky-numbers", "", "comma-separated integers")
	return cmd
}

func contactsListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := cur.contacts.List(cmd.Context(), store.PaginationParams{Limit: limit, Cursor: cursor})
			if err != nil {
				return err
			}
			views := make([]service.ContactView, len(page.Items))
			for i, c := range page.Items {
				views[i] = cur.contacts.View(c)
			}
			return cur.printJSON(store.PaginatedResult[service.ContactView]{
				Items:      views,
				NextCursor: page.NextCursor,
				HasMore:    page.HasMore,
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default 100)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor from a previous page")
	return cmd
}

func contactsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|slug>",
		Short: "Show a contact by id or slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				c   *domain.Contact
				err error
			)
			if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
				c, err = cur.contacts.Get(cmd.Context(), id)
			} else {
				c, err = cur.contacts.GetBySlug(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return cur.printJSON(cur.contacts.View(c))
		},
	}
}

func contactsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			if err := cur.contacts.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cur.out, "contact %d deleted\n", id)
			return err
		},
	}
}
