package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message to the assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClientFromFlags().send(cmd.Context(), sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printReply(cmd.OutOrStdout(), resp)
	},
}

var rejectProposal bool
var confirmToken string

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Accept or reject the pending proposal of a session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if sessionID == "" || confirmToken == "" {
			return errors.New("--session and --token are required")
		}
		resp, err := newClientFromFlags().confirm(cmd.Context(), sessionID, confirmToken, !rejectProposal)
		if err != nil {
			return err
		}
		return printReply(cmd.OutOrStdout(), resp)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the transcript of a session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if sessionID == "" {
			return errors.New("--session is required")
		}
		resp, err := newClientFromFlags().history(cmd.Context(), sessionID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		for _, m := range resp.Data {
			label := m.Role
			if m.ToolName != "" {
				label += ":" + m.ToolName
			}
			fmt.Fprintf(out, "[%s] %s\n", label, m.Content)
		}
		if p := resp.PendingConfirmation; p != nil {
			fmt.Fprintf(out, "\nPending %s (token %s)\n", p.ToolName, p.Token)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the transcript and pending proposal of a session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if sessionID == "" {
			return errors.New("--session is required")
		}
		if err := newClientFromFlags().clear(cmd.Context(), sessionID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s cleared\n", sessionID)
		return nil
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the assistant can call",
	RunE: func(cmd *cobra.Command, _ []string) error {
		resp, err := newClientFromFlags().tools(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		for _, t := range resp.Data {
			marker := " "
			if t.Mutating {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-28s %s\n", marker, t.Name, t.Description)
		}
		fmt.Fprintln(out, "\n* needs confirmation")
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat interactively, answering confirmation prompts inline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runREPL(cmd, newClientFromFlags(), os.Stdin)
	},
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, confirmCmd, historyCmd, clearCmd, replCmd} {
		c.Flags().StringVar(&sessionID, "session", "", "Session ID")
	}
	confirmCmd.Flags().StringVar(&confirmToken, "token", "", "Confirmation token")
	confirmCmd.Flags().BoolVar(&rejectProposal, "reject", false, "Reject instead of accept")
}

func runREPL(cmd *cobra.Command, client *apiClient, in io.Reader) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)
	session := sessionID

	fmt.Fprintln(out, "Type a message, or /quit to exit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		resp, err := client.send(cmd.Context(), session, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		session = resp.SessionID
		if err := printReply(out, resp); err != nil {
			return err
		}

		for resp.RequiresConfirmation && resp.ConfirmationData != nil {
			fmt.Fprint(out, "Apply this change? [y/N] ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			resp, err = client.confirm(cmd.Context(), session, resp.ConfirmationData.Token, answer == "y" || answer == "yes")
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				break
			}
			if err := printReply(out, resp); err != nil {
				return err
			}
		}
	}
}

func printReply(out io.Writer, resp *chatResponse) error {
	if jsonOutput {
		return printJSON(out, resp)
	}
	fmt.Fprintln(out, resp.Response)
	if resp.RequiresConfirmation && resp.ConfirmationData != nil {
		fmt.Fprintf(out, "\nsession: %s\nconfirmation token: %s\n", resp.SessionID, resp.ConfirmationData.Token)
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
