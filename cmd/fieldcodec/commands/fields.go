package commands

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/listenupapp/fieldcodec/internal/codec"
)

type valueOutput struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Value   any    `json:"value"`
	Display string `json:"display"`
	Valid   bool   `json:"valid"`
}

type storedOutput struct {
	Field  string  `json:"field"`
	Stored *string `json:"stored"`
}

func fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List configured fields",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cur.printJSON(cur.fields.Fields())
		},
	}
}

// textArg reads an optional positional value. A missing value, or --null,
// means SQL NULL.
func textArg(args []string, null bool) sql.NullString {
	if null || len(args) < 2 {
		return sql.NullString{}
	}
	return sql.NullString{String: args[1], Valid: true}
}

func valueOut(field string, v codec.Value) valueOutput {
	return valueOutput{
		Field:   field,
		Kind:    string(v.Kind),
		Value:   v.Data,
		Display: v.Display,
		Valid:   v.Valid,
	}
}

func parseCmd() *cobra.Command {
	var null bool
	cmd := &cobra.Command{
		Use:   "parse <field> [stored]",
		Short: "Decode a stored column value",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := cur.fields.Parse(args[0], textArg(args, null))
			if err != nil {
				return err
			}
			return cur.printJSON(valueOut(args[0], v))
		},
	}
	cmd.Flags().BoolVar(&null, "null", false, "treat the value as NULL")
	return cmd
}

func normalizeCmd() *cobra.Command {
	var null bool
	cmd := &cobra.Command{
		Use:   "normalize <field> [raw]",
		Short: "Validate raw input",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := cur.fields.Normalize(args[0], textArg(args, null))
			if err != nil {
				return err
			}
			return cur.printJSON(valueOut(args[0], v))
		},
	}
	cmd.Flags().BoolVar(&null, "null", false, "treat the value as NULL")
	return cmd
}

func serializeCmd() *cobra.Command {
	var null bool
	cmd := &cobra.Command{
		Use:   "serialize <field> [raw]",
		Short: "Show the column value raw input would be stored as",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := cur.fields.Serialize(cmd.Context(), args[0], textArg(args, null))
			if err != nil {
				return err
			}
			out := storedOutput{Field: args[0]}
			if stored.Valid {
				out.Stored = &stored.String
			}
			return cur.printJSON(out)
		},
	}
	cmd.Flags().BoolVar(&null, "null", false, "treat the value as NULL")
	return cmd
}
