package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/prompt"
	"github.com/Tiliavir/track/internal/render"
)

const (
	newClientChoice = "[Create new client]"
	newTaskChoice   = "[Create new task]"
)

var (
	startClient      string
	startTask        string
	startDescription string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a tracking log",
	Long: `Start a new open log for a client and task. Missing values are asked
for, offering the clients and tasks already on record.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startClient, "client", "c", "", "Client name")
	startCmd.Flags().StringVarP(&startTask, "task", "t", "", "Task name")
	startCmd.Flags().StringVarP(&startDescription, "description", "d", "", "Task description")
}

func runStart(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	p := newPrompter()

	client := strings.TrimSpace(startClient)
	if client == "" {
		clients, err := store.Clients()
		if err != nil {
			return err
		}
		client, err = pickOrCreate(p, "Select client", clients, newClientChoice, "New client name", "Client")
		if err != nil {
			return err
		}
	}

	task := strings.TrimSpace(startTask)
	if task == "" {
		tasks, err := store.Tasks(client)
		if err != nil {
			return err
		}
		task, err = pickOrCreate(p, "Select task for "+client, tasks, newTaskChoice, "New task name", "Task")
		if err != nil {
			return err
		}
	}

	description := startDescription
	if description == "" && !cmd.Flags().Changed("description") {
		description, err = p.Text("Description", "")
		if err != nil {
			return err
		}
	}

	e, err := store.Create(client, task, description)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Panel("track start",
		fmt.Sprintf("Started %s\n%s", e.Record.Client, e.Record.Name), render.ColorSuccess))
	return nil
}

// pickOrCreate offers the known values plus a create entry. Without known
// values it asks for one directly, which must not be empty.
func pickOrCreate(p prompt.Prompter, title string, known []string, createChoice, newTitle, firstTitle string) (string, error) {
	if len(known) == 0 {
		v, err := p.Text(firstTitle, "")
		if err != nil {
			return "", err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return "", errors.New(strings.ToLower(firstTitle) + " name cannot be empty")
		}
		return v, nil
	}

	choices := append(append([]string{}, known...), createChoice)
	selected, err := p.Select(title, choices)
	if err != nil {
		return "", err
	}
	if selected != createChoice {
		return selected, nil
	}
	for {
		v, err := p.Text(newTitle, "")
		if err != nil {
			return "", err
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
}
