package commands

import (
	"fmt"
	"strconv"

	"triviaapi/internal/models"
	"triviaapi/internal/services"
	contextutils "triviaapi/internal/utils"

	"github.com/spf13/cobra"
)

// QuestionCommands returns the question management commands
func QuestionCommands(rt *Runtime) *cobra.Command {
	questionsCmd := &cobra.Command{
		Use:   "questions",
		Short: "Question management commands",
		Long: `Question management commands for the trivia API.

Available commands:
  list     - List questions a page at a time
  delete   - Delete a question by id`,
	}

	questionsCmd.AddCommand(listQuestionsCmd(rt))
	questionsCmd.AddCommand(deleteQuestionCmd(rt))

	return questionsCmd
}

// listQuestionsCmd returns the list command
func listQuestionsCmd(rt *Runtime) *cobra.Command {
	var category, page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions",
		Long:  `List one page of questions ordered by id, optionally restricted to a category.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := rt.DB(ctx, false)
			if err != nil {
				return err
			}
			questionService := services.NewQuestionServiceWithLogger(db, rt.Config, rt.Logger)

			var result *models.QuestionPage
			if cmd.Flags().Changed("category") {
				result, err = questionService.GetQuestionsByCategory(ctx, category, page)
			} else {
				result, err = questionService.ListQuestions(ctx, page)
			}
			if contextutils.IsError(err, contextutils.ErrQuestionNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No questions found")
				return nil
			}
			if err != nil {
				return err
			}

			printQuestions(cmd, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&category, "category", 0, "Only list questions in this category")
	cmd.Flags().IntVar(&page, "page", 1, "Page to list")

	return cmd
}

func printQuestions(cmd *cobra.Command, result *models.QuestionPage) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-5s %-8s %-10s %-60s %s\n", "ID", "Category", "Difficulty", "Question", "Answer")
	for _, q := range result.Questions {
		fmt.Fprintf(out, "%-5d %-8s %-10s %-60s %s\n",
			q.ID, nullInt(q.Category.Int64, q.Category.Valid), nullInt(q.Difficulty.Int64, q.Difficulty.Valid),
			truncate(q.Question.String, 60), q.Answer.String)
	}
	fmt.Fprintf(out, "Page %d, %d of %d questions\n", result.Page, len(result.Questions), result.Total)
}

func nullInt(v int64, valid bool) string {
	if !valid {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// deleteQuestionCmd returns the delete command
func deleteQuestionCmd(rt *Runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a question",
		Long:  `Delete a question by id. Asks for confirmation unless --yes is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "question id %q is not an integer", args[0])
			}

			if !yes {
				ok, err := rt.confirm(cmd.OutOrStdout(), fmt.Sprintf("Delete question %d?", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			db, err := rt.DB(ctx, false)
			if err != nil {
				return err
			}
			questionService := services.NewQuestionServiceWithLogger(db, rt.Config, rt.Logger)
			if err := questionService.DeleteQuestion(ctx, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted question %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
