package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bochengwang975-blip/campus/core/course"
)

func (cli *commandLine) timetableCmd(format func() string) *cobra.Command {
	var viewerID, role, username string

	cmd := &cobra.Command{
		Use:   "timetable",
		Short: "Print the weekly timetable of a viewer (every course by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if username != "" {
				usr, err := cli.usrSvc.GetByUsername(ctx, username)
				if err != nil {
					return errors.Wrapf(err, "finding user %q", username)
				}
				viewerID = usr.ID
				if role == "" {
					role = usr.TimetableView()
				}
			}

			week, err := cli.courseSvc.Timetable(ctx, viewerID, course.Role(role))
			if err != nil {
				return err
			}
			return printAs(cmd.OutOrStdout(), format(), week, func() string { return renderWeek(week) })
		},
	}

	cmd.Flags().StringVar(&viewerID, "viewer", "", "ID of the viewer")
	cmd.Flags().StringVarP(&username, "user", "u", "", "Username of the viewer; the role defaults to their highest one")
	cmd.Flags().StringVarP(&role, "role", "r", "", "Viewer role: admin|teacher|student")
	return cmd
}
