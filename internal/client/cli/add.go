package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmarques/obrafield/internal/client/models"
)

func (a *App) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record new data locally",
		Long: `Add stores a new row in the local database marked as pending. It is
uploaded on the next sync; no connection is needed now.`,
	}
	cmd.AddCommand(
		a.addAreaCmd(),
		a.addCollaboratorCmd(),
		a.addRequesterCmd(),
		a.addApproverCmd(),
		a.addRecordCmd(),
		a.addSurveyCmd(),
		a.addMeasurementCmd(),
	)
	return cmd
}

func (a *App) addAreaCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Add a work area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			area := &models.Area{Name: name}
			if err := a.reg.Areas.Save(cmd.Context(), area); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Area %d saved.\n", area.LocalID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "area name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *App) addCollaboratorCmd() *cobra.Command {
	var name, registration, role string
	cmd := &cobra.Command{
		Use:   "collaborator",
		Short: "Add a collaborator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &models.Collaborator{Name: name, Registration: registration, Role: role}
			if err := a.reg.Collabs.Save(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Collaborator %d saved.\n", c.LocalID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&registration, "registration", "", "registration number (required)")
	cmd.Flags().StringVar(&role, "role", "", "job role")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("registration")
	return cmd
}

func (a *App) addRequesterCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "requester",
		Short: "Add a requester",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &models.Requester{Name: name, Email: email}
			if err := a.reg.Requesters.Save(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Requester %d saved.\n", r.LocalID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *App) addApproverCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "approver",
		Short: "Add an approver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ap := &models.Approver{Name: name, Email: email}
			if err := a.reg.Approvers.Save(cmd.Context(), ap); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Approver %d saved.\n", ap.LocalID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *App) addRecordCmd() *cobra.Command {
	var date string
	var areaID, requesterID, approverID int64
	var notes string
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Add a daily attendance record",
		Long: `Record creates a daily attendance form for one area. Worker entries
are collected interactively; finish with an empty collaborator id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := &models.DailyRecord{
				RecordDate: date,
				AreaID:     areaID,
				Notes:      notes,
			}
			if requesterID > 0 {
				rec.RequesterID = &requesterID
			}
			if approverID > 0 {
				rec.ApproverID = &approverID
			}

			for {
				collabID, err := promptInt(a.reader, "Collaborator id (empty to finish)", a.out)
				if err != nil {
					return err
				}
				if collabID == 0 {
					break
				}
				hours, err := promptFloat(a.reader, "Hours", a.out)
				if err != nil {
					return err
				}
				activity, err := promptText(a.reader, "Activity", a.out)
				if err != nil {
					return err
				}
				overtime, err := promptText(a.reader, "Overtime? (y/N)", a.out)
				if err != nil {
					return err
				}
				rec.Entries = append(rec.Entries, models.AttendanceEntry{
					CollaboratorID: collabID,
					Hours:          hours,
					Activity:       activity,
					Overtime:       overtime == "y" || overtime == "Y",
				})
			}

			if err := a.reg.DailyRecords.Save(cmd.Context(), rec); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Daily record %d saved with %d entries.\n",
				rec.LocalID, len(rec.Entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "record date, YYYY-MM-DD (required)")
	cmd.Flags().Int64Var(&areaID, "area", 0, "local id of the work area (required)")
	cmd.Flags().Int64Var(&requesterID, "requester", 0, "local id of the requester")
	cmd.Flags().Int64Var(&approverID, "approver", 0, "local id of the approver")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("area")
	return cmd
}

func (a *App) addSurveyCmd() *cobra.Command {
	var title, date string
	var areaID int64
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Add a quality survey",
		Long: `Survey creates a quality checklist for one area. Questions are collected
interactively; finish with an empty question.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &models.Survey{Title: title, SurveyDate: date, AreaID: areaID}

			for {
				question, err := promptText(a.reader, "Question (empty to finish)", a.out)
				if err != nil {
					return err
				}
				if question == "" {
					break
				}
				answer, err := promptText(a.reader, "Answer", a.out)
				if err != nil {
					return err
				}
				score, err := promptFloat(a.reader, "Score", a.out)
				if err != nil {
					return err
				}
				flagged, err := promptText(a.reader, "Flag for followup? (y/N)", a.out)
				if err != nil {
					return err
				}
				s.Items = append(s.Items, models.SurveyItem{
					Question: question,
					Answer:   answer,
					Score:    score,
					Flagged:  flagged == "y" || flagged == "Y",
				})
			}

			if err := a.reg.Surveys.Save(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Survey %d saved with %d items.\n", s.LocalID, len(s.Items))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "survey title (required)")
	cmd.Flags().StringVar(&date, "date", "", "survey date, YYYY-MM-DD (required)")
	cmd.Flags().Int64Var(&areaID, "area", 0, "local id of the work area (required)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("area")
	return cmd
}

func (a *App) addMeasurementCmd() *cobra.Command {
	var number, start, end string
	var projectID int64
	cmd := &cobra.Command{
		Use:   "measurement",
		Short: "Add a measurement bulletin",
		Long: `Measurement creates a bulletin over a period. Line items are collected
interactively; finish with an empty item id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := &models.Measurement{
				Number:        number,
				PeriodStart:   start,
				PeriodEnd:     end,
				ProjectCodeID: projectID,
			}

			for {
				itemID, err := promptInt(a.reader, "BM item id (empty to finish)", a.out)
				if err != nil {
					return err
				}
				if itemID == 0 {
					break
				}
				qty, err := promptFloat(a.reader, "Quantity", a.out)
				if err != nil {
					return err
				}
				notes, err := promptText(a.reader, "Notes", a.out)
				if err != nil {
					return err
				}
				m.Items = append(m.Items, models.MeasurementItem{
					BmItemID: itemID,
					Quantity: qty,
					Notes:    notes,
				})
			}

			if err := a.reg.Measurements.Save(cmd.Context(), m); err != nil {
				return err
			}
			a.measurements.Invalidate(cmd.Context())
			fmt.Fprintf(a.out, "Measurement %d saved with %d items.\n", m.LocalID, len(m.Items))
			return nil
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "bulletin number (required)")
	cmd.Flags().StringVar(&start, "start", "", "period start, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "period end, YYYY-MM-DD")
	cmd.Flags().Int64Var(&projectID, "project", 0, "local id of the project code (required)")
	_ = cmd.MarkFlagRequired("number")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
