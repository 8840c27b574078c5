package main

import (
	"github.com/spf13/cobra"

	"github.com/bochengwang975-blip/campus/core/course"
)

func (cli *commandLine) checkCmd(format func() string) *cobra.Command {
	var (
		cand        course.Candidate
		day, period int
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a placement against every saved course; exits with an error on conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if day != 0 || period != 0 {
				cand.Time = &course.TimeSlot{Day: day, Period: period}
			}

			report, err := cli.courseSvc.CheckConflict(cmd.Context(), cand)
			if err != nil {
				return err
			}
			if err = printAs(cmd.OutOrStdout(), format(), report, func() string { return renderReport(report) }); err != nil {
				return err
			}
			if report.HasConflict {
				return errConflicts
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&cand.TeacherIDs, "teacher", "t", nil, "Teacher ID (repeatable)")
	cmd.Flags().IntVarP(&day, "day", "d", 0, "Day of the week, 1 (Monday) to 5 (Friday)")
	cmd.Flags().IntVarP(&period, "period", "p", 0, "Period of the day, 1 to 5")
	cmd.Flags().StringVarP(&cand.Location, "location", "l", "", "Room, eg. A402")
	cmd.Flags().StringVar(&cand.ID, "exclude", "", "ID of the course being edited")
	return cmd
}
