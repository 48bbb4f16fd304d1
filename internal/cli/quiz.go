package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/internal/app"
)

func newQuizCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate and submit quizzes",
	}
	cmd.AddCommand(newQuizGenerateCmd(s), newQuizSubmitCmd(s))
	return cmd
}

func newQuizGenerateCmd(s *state) *cobra.Command {
	var topic, difficulty, save string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a quiz",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if err := admit(cmd, rt, "/quiz"); err != nil {
				return err
			}
			quiz, err := rt.API.GenerateQuiz(cmd.Context(), topic, difficulty)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(quiz.Questions) == 0 {
				fmt.Fprintf(out, "No questions for %q: %s\n", quiz.Topic, quiz.Message)
				return nil
			}
			fmt.Fprintf(out, "%s (%s)\n", quiz.Topic, quiz.Difficulty)
			for _, q := range quiz.Questions {
				fmt.Fprintf(out, "\n%d. %s\n", q.QuestionID, q.Question)
				for _, opt := range q.Options {
					fmt.Fprintf(out, "   - %s\n", opt)
				}
			}

			if save != "" {
				data, err := json.MarshalIndent(quiz, "", "  ")
				if err != nil {
					return fmt.Errorf("encode quiz: %w", err)
				}
				if err := os.WriteFile(save, data, 0o600); err != nil {
					return fmt.Errorf("save quiz: %w", err)
				}
				fmt.Fprintf(out, "\nSaved to %s\n", save)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&topic, "topic", api.DefaultTopic, "quiz topic")
	cmd.Flags().StringVar(&difficulty, "difficulty", api.DefaultDifficulty, "easy, medium or hard")
	cmd.Flags().StringVar(&save, "save", "", "write the quiz to this file for `quiz submit`")
	return cmd
}

func newQuizSubmitCmd(s *state) *cobra.Command {
	var (
		quizFile string
		answers  map[string]string
		taken    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit answers to a saved quiz",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if err := admit(cmd, rt, "/quiz/submit"); err != nil {
				return err
			}
			data, err := os.ReadFile(quizFile)
			if err != nil {
				return fmt.Errorf("read quiz: %w", err)
			}
			var quiz api.Quiz
			if err := json.Unmarshal(data, &quiz); err != nil {
				return fmt.Errorf("parse quiz %s: %w", quizFile, err)
			}

			selected := make(map[int]string, len(answers))
			for k, v := range answers {
				id, err := strconv.Atoi(k)
				if err != nil {
					return fmt.Errorf("invalid question id %q", k)
				}
				selected[id] = v
			}

			res, err := rt.API.SubmitQuiz(cmd.Context(), api.Submission{
				Answers:    quiz.Grade(selected),
				Topic:      quiz.Topic,
				Difficulty: quiz.Difficulty,
				TimeTaken:  int(taken.Seconds()),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Score:      %d%% (%d/%d correct)\n", res.ScorePercentage, res.CorrectAnswers, res.TotalQuestions)
			fmt.Fprintf(out, "Points:     %d\n", res.Score)
			if res.NextLevel != "" {
				fmt.Fprintf(out, "Next level: %s\n", res.NextLevel)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&quizFile, "quiz", "", "quiz file written by `quiz generate --save`")
	cmd.Flags().StringToStringVar(&answers, "answer", nil, "selected option per question, e.g. --answer 1=Paris")
	cmd.Flags().DurationVar(&taken, "time", 0, "time taken")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}
