package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/render"
)

var tasksClient string

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List the clients found in the logs",
	Args:  cobra.NoArgs,
	RunE:  runClients,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the tasks recorded for a client",
	Args:  cobra.NoArgs,
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().StringVarP(&tasksClient, "client", "c", "", "Client name")
}

func runClients(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	clients, err := store.Clients()
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), render.Message("No logs found.", render.ColorWarning))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), render.List("Clients", clients))
	return nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	client := tasksClient
	if client == "" {
		clients, err := store.Clients()
		if err != nil {
			return err
		}
		if len(clients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), render.Message("No logs found.", render.ColorWarning))
			return nil
		}
		client, err = newPrompter().Select("Select client", clients)
		if err != nil {
			return err
		}
	}

	tasks, err := store.Tasks(client)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), render.Message("No tasks recorded for "+client+".", render.ColorWarning))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), render.List("Tasks for "+client, tasks))
	return nil
}
