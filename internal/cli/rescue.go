package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grazioso/shelter/internal/shelter"
)

var rescueCountOnly bool

var rescueCmd = &cobra.Command{
	Use:   "rescue",
	Short: "Find dogs suited for rescue training",
	Long: fmt.Sprintf(`List young dogs (%d weeks old or less) whose breed suits a rescue
discipline. Each discipline has a fixed breed list.`, shelter.MaxRescueAgeWeeks),
}

func newRescueCmd(use string, preset shelter.Preset, read func(*shelter.Gateway, context.Context) []shelter.Record) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("List %s candidates", preset),
		Long:  fmt.Sprintf("List %s candidates. Breeds: %v.", preset, preset.Breeds()),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			gateway, err := connectAnimals(ctx)
			if err != nil {
				return err
			}

			records := read(gateway, ctx)
			if rescueCountOnly {
				fmt.Fprintln(cmd.OutOrStdout(), len(records))
				return nil
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s🐕 %s%s\n", HeaderStyle, preset, Reset)
			if err := printRecords(cmd.OutOrStdout(), records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", FormatCountLabel("Candidates:", len(records)))
			return nil
		},
	}
}

func init() {
	rescueCmd.PersistentFlags().BoolVarP(&rescueCountOnly, "count", "q", false, "only print the number of candidates")

	rescueCmd.AddCommand(newRescueCmd("water", shelter.PresetWaterRescue, (*shelter.Gateway).ReadWaterRescue))
	rescueCmd.AddCommand(newRescueCmd("mountain", shelter.PresetMountainRescue, (*shelter.Gateway).ReadMountainRescue))
	rescueCmd.AddCommand(newRescueCmd("disaster", shelter.PresetDisasterTracking, (*shelter.Gateway).ReadDisasterTracking))
}
