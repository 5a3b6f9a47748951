package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grazioso/shelter/internal/scheduler"
	"github.com/grazioso/shelter/internal/services"
)

var schedulerRunNow bool

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the report scheduler",
	Long:  `Run the reports listed under "reports" in the config file on their cron expressions.`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler",
	RunE:  runSchedulerStart,
}

func init() {
	schedulerCmd.AddCommand(schedulerStartCmd)

	schedulerStartCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "run every report once before waiting for its schedule")
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("%s🚀 Start Scheduler%s\n", HeaderStyle, Reset)
	fmt.Printf("%s================%s\n", DimStyle, Reset)
	fmt.Println()

	if len(cfg.Reports) == 0 {
		fmt.Printf("%s❌ No reports configured%s\n", ErrorStyle, Reset)
		fmt.Printf("%s💡 Add entries under 'reports' in %s or run 'shelter init'%s\n", InfoStyle, cfgFile, Reset)
		return nil
	}

	gateway, err := connectAnimals(ctx)
	if err != nil {
		return err
	}
	if _, err := connectTickets(ctx); err != nil {
		return err
	}

	sched := scheduler.New(services.NewReportService(gateway, ticketStore))
	sched.OnResult = func(r scheduler.Result) {
		if r.Err != nil {
			fmt.Printf("%s[%s] %s failed: %v%s\n", ErrorStyle, r.RanAt.Format("15:04:05"), r.Job, r.Err, Reset)
			return
		}
		fmt.Printf("%s[%s]%s %s\n", DimStyle, r.RanAt.Format("15:04:05"), Reset, FormatCountLabel(r.Job+":", r.Count))
	}

	fmt.Printf("%sStarting Reports:%s\n", LabelStyle, Reset)
	for i, job := range cfg.Reports {
		if err := sched.Add(job); err != nil {
			return err
		}
		fmt.Printf("  %s%d. %s%s\n", CountStyle, i+1, Reset, FormatValue(job.Name))
		fmt.Printf("     %sReport: %s | Cron: %s%s\n", DimStyle, job.Report, job.CronExpr, Reset)
	}
	fmt.Println()

	if schedulerRunNow {
		for _, job := range sched.Jobs() {
			sched.Run(ctx, job)
		}
		fmt.Println()
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	fmt.Printf("%s✅ All reports scheduled%s\n", SuccessStyle, Reset)
	fmt.Printf("%s📅 Running %s report(s)%s\n", InfoStyle, FormatCount(len(cfg.Reports)), Reset)
	fmt.Printf("%s📝 Press Ctrl+C to stop the scheduler%s\n", InfoStyle, Reset)
	fmt.Println()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Printf("\n%s⏹️  Stopping scheduler...%s\n", InfoStyle, Reset)
	sched.Stop()
	fmt.Printf("%s✅ Scheduler stopped%s\n", SuccessStyle, Reset)

	return nil
}
