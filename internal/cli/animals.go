package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	animalRecord string
	animalFilter string
	animalSet    string
	animalQuiet  bool
)

var animalsCmd = &cobra.Command{
	Use:   "animals",
	Short: "Manage animal records",
	Long: `Create, read, update and delete animal records.

Records and filters are given as relaxed extended JSON, for example
--filter '{"breed": {"$in": ["Newfoundland", "Bloodhound"]}}'.`,
}

var animalsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Insert one animal record",
	RunE:  runAnimalsCreate,
}

var animalsReadCmd = &cobra.Command{
	Use:   "read",
	Short: "List animal records matching a filter (all records when omitted)",
	RunE:  runAnimalsRead,
}

var animalsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Set fields on every record matching a filter",
	RunE:  runAnimalsUpdate,
}

var animalsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every record matching a filter",
	RunE:  runAnimalsDelete,
}

func init() {
	animalsCmd.AddCommand(animalsCreateCmd)
	animalsCmd.AddCommand(animalsReadCmd)
	animalsCmd.AddCommand(animalsUpdateCmd)
	animalsCmd.AddCommand(animalsDeleteCmd)

	animalsCreateCmd.Flags().StringVarP(&animalRecord, "record", "r", "", "record to insert")
	_ = animalsCreateCmd.MarkFlagRequired("record")

	animalsReadCmd.Flags().StringVarP(&animalFilter, "filter", "f", "", "match filter")
	animalsReadCmd.Flags().BoolVarP(&animalQuiet, "count", "q", false, "only print the number of matching records")

	animalsUpdateCmd.Flags().StringVarP(&animalFilter, "filter", "f", "", "match filter")
	animalsUpdateCmd.Flags().StringVarP(&animalSet, "set", "s", "", "fields to set")
	_ = animalsUpdateCmd.MarkFlagRequired("filter")
	_ = animalsUpdateCmd.MarkFlagRequired("set")

	animalsDeleteCmd.Flags().StringVarP(&animalFilter, "filter", "f", "", "match filter (use {} to delete everything)")
	_ = animalsDeleteCmd.MarkFlagRequired("filter")
}

func runAnimalsCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	record, err := parseDocument("record", animalRecord)
	if err != nil {
		return err
	}

	gateway, err := connectAnimals(ctx)
	if err != nil {
		return err
	}

	if !gateway.Create(ctx, record) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s❌ Record was not created%s\n", ErrorStyle, Reset)
		return fmt.Errorf("create failed")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s✅ Record created%s\n", SuccessStyle, Reset)
	return nil
}

func runAnimalsRead(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	filter, err := parseDocument("filter", animalFilter)
	if err != nil {
		return err
	}

	gateway, err := connectAnimals(ctx)
	if err != nil {
		return err
	}

	records := gateway.Read(ctx, filter)
	if animalQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), len(records))
		return nil
	}
	if err := printRecords(cmd.OutOrStdout(), records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", FormatCountLabel("Records:", len(records)))
	return nil
}

func runAnimalsUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	filter, err := parseDocument("filter", animalFilter)
	if err != nil {
		return err
	}
	set, err := parseDocument("set", animalSet)
	if err != nil {
		return err
	}

	gateway, err := connectAnimals(ctx)
	if err != nil {
		return err
	}

	n := gateway.Update(ctx, filter, set)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", FormatCountLabel("Records modified:", int(n)))
	return nil
}

func runAnimalsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	filter, err := parseDocument("filter", animalFilter)
	if err != nil {
		return err
	}

	gateway, err := connectAnimals(ctx)
	if err != nil {
		return err
	}

	n := gateway.Delete(ctx, filter)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", FormatCountLabel("Records deleted:", int(n)))
	return nil
}
