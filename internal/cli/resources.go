package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/internal/app"
)

func newResourcesCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Manage uploaded study resources",
	}
	cmd.AddCommand(newResourcesUploadCmd(s), newResourcesListCmd(s), newResourcesDeleteCmd(s))
	return cmd
}

func newResourcesUploadCmd(s *state) *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF resource",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if err := admit(cmd, rt, "/resources", auth.RoleStudent, auth.RoleTeacher); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			msg, err := rt.API.UploadResource(cmd.Context(), api.Upload{
				FileName: args[0],
				Content:  f,
				Topic:    topic,
				Progress: func(percent int) {
					fmt.Fprintf(out, "\rUploading... %3d%%", percent)
				},
			})
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, msg.Message)
			return nil
		}),
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic the resource covers")
	return cmd
}

func newResourcesListCmd(s *state) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your resources, or every resource with --all",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			var (
				list []api.Resource
				err  error
			)
			if all {
				if err := admit(cmd, rt, auth.AdminHome, auth.RoleAdmin); err != nil {
					return err
				}
				list, err = rt.API.AllResources(cmd.Context())
			} else {
				if err := admit(cmd, rt, "/resources", auth.RoleStudent, auth.RoleTeacher); err != nil {
					return err
				}
				list, err = rt.API.ListResources(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No resources found.")
				return nil
			}
			fmt.Fprintf(out, "%-8s  %-30s  %-20s  %-14s  %s\n", "ID", "FILE", "TOPIC", "UPLOADER", "UPLOADED")
			for _, r := range list {
				fmt.Fprintf(out, "%-8d  %-30s  %-20s  %-14s  %s\n", r.ID, r.FileName, r.Topic, r.UploaderRole, r.UploadedAt)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every user's resources (admin)")
	return cmd
}

func newResourcesDeleteCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid resource id %q", args[0])
			}
			if err := admit(cmd, rt, "/resources/"+args[0], auth.RoleStudent, auth.RoleTeacher, auth.RoleAdmin); err != nil {
				return err
			}
			msg, err := rt.API.DeleteResource(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.Message)
			return nil
		}),
	}
}
