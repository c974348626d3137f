package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
	"github.com/ALT-F4-LLC/lintdeck/internal/tui"
	"github.com/spf13/cobra"
)

// transitions lists the transition names the server accepts.
var transitions = []string{
	model.TransitionConfirm,
	model.TransitionUnconfirm,
	model.TransitionReopen,
	model.TransitionResolve,
	model.TransitionFalsePositive,
	model.TransitionWontFix,
	model.TransitionClose,
}

// runMutation performs one change and prints the resulting issue.
func runMutation(cmd *cobra.Command, key, action string, call func(ctx context.Context, c *api.Client) (*model.Issue, error)) error {
	w := getWriter(cmd)
	logger := getLogger(cmd)

	issue, err := call(cmd.Context(), getClient(cmd))
	if err != nil {
		logger.Error("issue update failed", "issue", key, "action", action, "error", err)
		return serverErr(action+" "+key, err)
	}
	logger.Info("issue updated", "issue", key, "action", action)

	jsonMode, _ := cmd.Flags().GetBool("json")
	var message string
	if !jsonMode {
		message = fmt.Sprintf("%s %s: %s", strings.ToUpper(action[:1])+action[1:], issue.Key, render.StatusLabel(issue))
	}
	w.Success(issue, message)
	return nil
}

var transitionCmd = &cobra.Command{
	Use:   "transition [key] [transition]",
	Short: "Apply a workflow transition to an issue",
	Long: "Apply a workflow transition to an issue. Transitions: " + strings.Join(transitions, ", ") + ".\n" +
		"Resolving as false positive or won't fix should be explained with --comment.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, transition := args[0], strings.ToLower(args[1])
		if !slices.Contains(transitions, transition) {
			return cmdErr(fmt.Errorf("invalid transition %q: must be one of %s", args[1], strings.Join(transitions, ", ")), output.ErrValidation)
		}
		comment, _ := cmd.Flags().GetString("comment")

		err := runMutation(cmd, key, "applied "+transition, func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.DoTransition(ctx, key, transition)
		})
		if err != nil || comment == "" {
			if err == nil && model.TransitionNeedsComment(transition) {
				getWriter(cmd).Warn("Consider explaining the resolution: lintdeck comment %s TEXT", key)
			}
			return err
		}
		return runMutation(cmd, key, "commented on", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.AddComment(ctx, key, comment)
		})
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign [key] [login]",
	Short: "Assign an issue, or unassign it when no login is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		me, _ := cmd.Flags().GetBool("me")
		if me {
			if len(args) == 2 {
				return cmdErr(errors.New("--me cannot be combined with a login"), output.ErrValidation)
			}
			return runMutation(cmd, key, "assigned to you", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
				return c.AssignToMe(ctx, key)
			})
		}

		login := ""
		action := "unassigned"
		if len(args) == 2 {
			login = args[1]
			action = "assigned to " + login
		}
		return runMutation(cmd, key, action, func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.Assign(ctx, key, login)
		})
	},
}

var severityCmd = &cobra.Command{
	Use:   "severity [key] [severity]",
	Short: "Change the severity of an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, severity := args[0], model.Severity(strings.ToUpper(args[1]))
		if err := model.ValidateSeverity(severity); err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		return runMutation(cmd, key, "set severity "+string(severity)+" on", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.SetSeverity(ctx, key, severity)
		})
	},
}

var typeCmd = &cobra.Command{
	Use:   "type [key] [type]",
	Short: "Change the type of an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, issueType := args[0], model.IssueType(strings.ToUpper(args[1]))
		if err := model.ValidateType(issueType); err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		return runMutation(cmd, key, "set type "+string(issueType)+" on", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.SetType(ctx, key, issueType)
		})
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag [key] [tags...]",
	Short: "Replace the tags of an issue; no tags clears them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		tags := tui.ParseTags(strings.Join(args[1:], ","))
		return runMutation(cmd, key, "tagged", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.SetTags(ctx, key, tags)
		})
	},
}

// commentText returns the text argument, or stdin when it is "-" or absent.
func commentText(cmd *cobra.Command, args []string) (string, error) {
	text := strings.Join(args, " ")
	if text == "" || text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", cmdErr(fmt.Errorf("reading comment: %w", err), output.ErrGeneral)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", cmdErr(errors.New("comment text must not be empty"), output.ErrValidation)
	}
	return text, nil
}

var commentCmd = &cobra.Command{
	Use:   "comment [key] [text]",
	Short: "Comment on an issue; text is read from stdin when omitted or '-'",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		text, err := commentText(cmd, args[1:])
		if err != nil {
			return err
		}
		return runMutation(cmd, key, "commented on", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.AddComment(ctx, key, text)
		})
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit [comment-key] [text]",
	Short: "Replace the text of a comment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commentKey := args[0]
		text, err := commentText(cmd, args[1:])
		if err != nil {
			return err
		}
		return runMutation(cmd, commentKey, "edited comment", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.EditComment(ctx, commentKey, text)
		})
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete [comment-key]",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commentKey := args[0]
		return runMutation(cmd, commentKey, "deleted comment", func(ctx context.Context, c *api.Client) (*model.Issue, error) {
			return c.DeleteComment(ctx, commentKey)
		})
	},
}

func init() {
	transitionCmd.Flags().StringP("comment", "m", "", "Comment to add after the transition")
	assignCmd.Flags().Bool("me", false, "Assign to the authenticated user")
	commentCmd.AddCommand(commentEditCmd, commentDeleteCmd)
	rootCmd.AddCommand(transitionCmd, assignCmd, severityCmd, typeCmd, tagCmd, commentCmd)
}
