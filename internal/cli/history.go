package cli

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/mlpipe/internal/journal"
)

// JournalFn открывает журнал выполнений (требует DB_URL).
// Возвращаемый cleanup закрывает пул соединений.
type JournalFn func() (*journal.Journal, func(), error)

// NewHistoryCmd создаёт группу команд для истории выполнений.
func NewHistoryCmd(journalFn JournalFn, outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past pipeline executions (requires DB_URL)",
	}

	cmd.AddCommand(
		newHistoryListCmd(journalFn, outputFn),
		newHistoryShowCmd(journalFn, outputFn),
	)

	return cmd
}

func newHistoryListCmd(journalFn JournalFn, outputFn OutputFn) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent pipeline executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			j, cleanup, err := journalFn()
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := j.Pipelines().List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "PROJECT", "GROUP", "STEPS", "STATUS", "DURATION", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID.String(),
					r.Project,
					r.Group,
					strings.Join(r.Steps, ","),
					string(r.Status),
					formatDuration(r.Duration()),
					r.CreatedAt.Format("2006-01-02 15:04:05"),
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	return cmd
}

func newHistoryShowCmd(journalFn JournalFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pipeline-run-id>",
		Short: "Show the steps of a pipeline execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			j, cleanup, err := journalFn()
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := j.Pipelines().GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			steps, err := j.Steps().ListByPipelineRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(map[string]any{"run": run, "steps": steps})
				return nil
			}

			printRun(out, run)

			headers := []string{"STEP", "REMOTE_RUN_ID", "STATUS", "DURATION", "ERROR"}
			rows := make([][]string, len(steps))
			for i, s := range steps {
				rows[i] = []string{
					s.Step,
					s.RemoteRunID,
					string(s.Status),
					formatDuration(s.Duration()),
					s.Error,
				}
			}
			out.Table(headers, rows)
			return nil
		},
	}
}
