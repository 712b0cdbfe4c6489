package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
	"github.com/codekarmatech/healthyphysio-sub004/internal/export"
	"github.com/codekarmatech/healthyphysio-sub004/internal/identity"
	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
	"github.com/codekarmatech/healthyphysio-sub004/internal/scheduling"
	"github.com/codekarmatech/healthyphysio-sub004/internal/sitesettings"
)

var (
	errHelp          = errors.New("help provided")
	errAdminRequired = errors.New("this command requires an admin token")
	errAborted       = errors.New("aborted")
)

const commandTimeout = 30 * time.Second

type commandLine struct {
	who        identity.Identity
	earnings   *earnings.Service
	attendance *attendance.Service
	scheduling *scheduling.Service
	settings   *sitesettings.Cache
	out        io.Writer
	prompt     func(label string) (string, error) // mockable
}

func stdinPrompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  attendance list|approve ID|bulk-approve ID,ID,...   - pending attendance queue")
	fmt.Fprintln(cli.out, "  requests list|approve ID|reject ID                  - attendance change requests")
	fmt.Fprintln(cli.out, "  leaves list|approve ID|reject ID                    - leave applications")
	fmt.Fprintln(cli.out, "  discrepancies list|resolve ID                       - session-time discrepancies")
	fmt.Fprintln(cli.out, "  availability list|mark -date D [-notes N]|remove -date D")
	fmt.Fprintln(cli.out, "  distribution -appointment ID -fee F [-config ID | -admin A -therapist T -doctor D -platform P] [-apply]")
	fmt.Fprintln(cli.out, "  configs list|save -name N -admin A -therapist T -doctor D -platform P")
	fmt.Fprintln(cli.out, "  earnings [-from D] [-to D]                          - earnings summaries")
	fmt.Fprintln(cli.out, "  export -report attendance|earnings|discrepancies -format csv|xlsx -o FILE")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch args[1] {
	case "attendance":
		return cli.runAttendance(ctx, args[2:])
	case "requests":
		return cli.runRequests(ctx, args[2:])
	case "leaves":
		return cli.runLeaves(ctx, args[2:])
	case "discrepancies":
		return cli.runDiscrepancies(ctx, args[2:])
	case "availability":
		return cli.runAvailability(ctx, args[2:])
	case "distribution":
		return cli.runDistribution(ctx, args[2:])
	case "configs":
		return cli.runConfigs(ctx, args[2:])
	case "earnings":
		return cli.runEarnings(ctx, args[2:])
	case "export":
		return cli.runExport(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) requireAdmin() error {
	if !cli.who.IsAdmin() {
		return errAdminRequired
	}
	return nil
}

func (cli *commandLine) runAttendance(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		records, err := cli.attendance.PendingRecords(ctx)
		if err != nil {
			return err
		}
		cli.printRecords(records)
		return nil
	case "approve":
		if len(args) < 2 {
			return fmt.Errorf("attendance approve: record id required")
		}
		records, err := cli.attendance.Approve(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "approved %s, %d still pending\n", args[1], len(records))
		return nil
	case "bulk-approve":
		if len(args) < 2 {
			return fmt.Errorf("attendance bulk-approve: comma-separated ids required")
		}
		ids := strings.Split(args[1], ",")
		outcomes, records, err := cli.attendance.BulkApprove(ctx, ids)
		if err != nil {
			return err
		}
		success, failed := attendance.Counts(outcomes)
		fmt.Fprintf(cli.out, "bulk approve: success=%d failed=%d\n", success, failed)
		for _, o := range outcomes {
			if o.Err != nil {
				fmt.Fprintf(cli.out, "  %s: %s\n", o.ID, restclient.ErrorMessage(o.Err))
			}
		}
		fmt.Fprintf(cli.out, "%d still pending\n", len(records))
		return nil
	default:
		return fmt.Errorf("attendance: unknown subcommand %q", args[0])
	}
}

func (cli *commandLine) runRequests(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		requests, err := cli.attendance.ChangeRequests(ctx)
		if err != nil {
			return err
		}
		for _, cr := range requests {
			fmt.Fprintf(cli.out, "%s  %s  %s -> %s  %s\n",
				cr.ID, cr.AttendanceDate, cr.CurrentStatus, cr.RequestedStatus, cr.Reason)
		}
		return nil
	case "approve":
		if len(args) < 2 {
			return fmt.Errorf("requests approve: request id required")
		}
		remaining, err := cli.attendance.ApproveChangeRequest(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "approved %s, %d still pending\n", args[1], len(remaining))
		return nil
	case "reject":
		if len(args) < 2 {
			return fmt.Errorf("requests reject: request id required")
		}
		reason, err := cli.promptReason()
		if err != nil {
			return err
		}
		remaining, err := cli.attendance.RejectChangeRequest(ctx, args[1], reason)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "rejected %s, %d still pending\n", args[1], len(remaining))
		return nil
	default:
		return fmt.Errorf("requests: unknown subcommand %q", args[0])
	}
}

func (cli *commandLine) runLeaves(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		leaves, err := cli.attendance.LeaveApplications(ctx)
		if err != nil {
			return err
		}
		for _, l := range leaves {
			fmt.Fprintf(cli.out, "%s  %s  %s..%s  %s\n", l.ID, l.LeaveType, l.StartDate, l.EndDate, l.Reason)
		}
		return nil
	case "approve":
		if len(args) < 2 {
			return fmt.Errorf("leaves approve: leave id required")
		}
		remaining, err := cli.attendance.ApproveLeave(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "approved %s, %d still pending\n", args[1], len(remaining))
		return nil
	case "reject":
		if len(args) < 2 {
			return fmt.Errorf("leaves reject: leave id required")
		}
		reason, err := cli.promptReason()
		if err != nil {
			return err
		}
		remaining, err := cli.attendance.RejectLeave(ctx, args[1], reason)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "rejected %s, %d still pending\n", args[1], len(remaining))
		return nil
	default:
		return fmt.Errorf("leaves: unknown subcommand %q", args[0])
	}
}

// promptReason collects a rejection reason before any API call; an empty or
// cancelled prompt aborts the command without touching the network.
func (cli *commandLine) promptReason() (string, error) {
	reason, err := cli.prompt("Rejection reason")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errAborted, err)
	}
	if strings.TrimSpace(reason) == "" {
		return "", fmt.Errorf("%w: a reason is required to reject", errAborted)
	}
	return reason, nil
}

func (cli *commandLine) runDiscrepancies(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		items, err := cli.attendance.Discrepancies(ctx)
		if err != nil {
			return err
		}
		for _, d := range items {
			fmt.Fprintf(cli.out, "%s  %s  %s  therapist=%dm patient=%dm diff=%dm\n",
				d.ID, d.AppointmentSessionCode, d.Date,
				d.TherapistDurationMin, d.PatientConfirmedDurMin, d.DiscrepancyMinutes)
		}
		return nil
	case "resolve":
		if len(args) < 2 {
			return fmt.Errorf("discrepancies resolve: discrepancy id required")
		}
		notes, err := cli.prompt("Resolution notes (optional)")
		if err != nil {
			notes = ""
		}
		remaining, err := cli.attendance.ResolveDiscrepancy(ctx, args[1], notes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "resolved %s, %d still open\n", args[1], len(remaining))
		return nil
	default:
		return fmt.Errorf("discrepancies: unknown subcommand %q", args[0])
	}
}

func (cli *commandLine) runAvailability(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	markCmd := flag.NewFlagSet("mark", flag.ExitOnError)
	markDate := markCmd.String("date", "", "date to mark, YYYY-MM-DD")
	markNotes := markCmd.String("notes", "", "optional notes")

	removeCmd := flag.NewFlagSet("remove", flag.ExitOnError)
	removeDate := removeCmd.String("date", "", "date to unmark, YYYY-MM-DD")

	switch args[0] {
	case "list":
		entries, err := cli.scheduling.Availability(ctx, cli.who.UserID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cli.out, "%s  %s\n", e.Date, e.Notes)
		}
		return nil
	case "mark":
		if err := markCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *markDate == "" {
			markCmd.Usage()
			return errHelp
		}
		if err := cli.scheduling.MarkAvailability(ctx, cli.who.UserID, *markDate, *markNotes); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "marked available on %s\n", *markDate)
		return nil
	case "remove":
		if err := removeCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *removeDate == "" {
			removeCmd.Usage()
			return errHelp
		}
		if err := cli.scheduling.RemoveAvailability(ctx, cli.who.UserID, *removeDate); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "removed availability on %s\n", *removeDate)
		return nil
	default:
		return fmt.Errorf("availability: unknown subcommand %q", args[0])
	}
}

func (cli *commandLine) runDistribution(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}

	cmd := flag.NewFlagSet("distribution", flag.ExitOnError)
	appointmentID := cmd.String("appointment", "", "appointment id")
	fee := cmd.Float64("fee", 0, "gross session fee")
	configID := cmd.String("config", "", "saved distribution config id")
	adminPct := cmd.Float64("admin", 0, "manual admin percent")
	therapistPct := cmd.Float64("therapist", 0, "manual therapist percent")
	doctorPct := cmd.Float64("doctor", 0, "manual doctor percent")
	platformPct := cmd.Float64("platform", 0, "manual platform fee percent")
	apply := cmd.Bool("apply", false, "apply the result to the appointment")

	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *appointmentID == "" || *fee <= 0 {
		cmd.Usage()
		return errHelp
	}

	input := earnings.CalculationInput{
		AppointmentID: *appointmentID,
		Fee:           *fee,
		ConfigID:      *configID,
	}
	if *configID == "" {
		input.Manual = &earnings.PercentSplit{
			AdminPct:       *adminPct,
			TherapistPct:   *therapistPct,
			DoctorPct:      *doctorPct,
			PlatformFeePct: *platformPct,
		}
	}

	result, err := cli.earnings.Calculate(ctx, input)
	if err != nil {
		return err
	}

	settings, err := cli.settings.Get(ctx, false)
	if err != nil {
		return err
	}
	cur := settings.Currency

	fmt.Fprintf(cli.out, "total:          %s %.2f\n", cur, result.Total)
	fmt.Fprintf(cli.out, "platform fee:   %s %.2f\n", cur, result.PlatformFee)
	fmt.Fprintf(cli.out, "distributable:  %s %.2f\n", cur, result.DistributableAmount)
	fmt.Fprintf(cli.out, "admin:          %s %.2f (%.2f%%)\n", cur, result.AdminAmount, result.AdminPct)
	fmt.Fprintf(cli.out, "therapist:      %s %.2f (%.2f%%)\n", cur, result.TherapistAmount, result.TherapistPct)
	fmt.Fprintf(cli.out, "doctor:         %s %.2f (%.2f%%)\n", cur, result.DoctorAmount, result.DoctorPct)
	if result.BelowThreshold {
		fmt.Fprintln(cli.out, "note: fee is below the minimum, small-session policy applied")
	}

	if !*apply {
		return nil
	}
	if err := cli.earnings.Apply(ctx, *appointmentID, result); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "applied to appointment %s\n", *appointmentID)
	return nil
}

func (cli *commandLine) runConfigs(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	saveCmd := flag.NewFlagSet("save", flag.ExitOnError)
	id := saveCmd.String("id", "", "config id, empty to create")
	name := saveCmd.String("name", "", "config name")
	adminPct := saveCmd.Float64("admin", 0, "admin percent")
	therapistPct := saveCmd.Float64("therapist", 0, "therapist percent")
	doctorPct := saveCmd.Float64("doctor", 0, "doctor percent")
	platformPct := saveCmd.Float64("platform", 0, "platform fee percent")

	switch args[0] {
	case "list":
		configs, err := cli.earnings.Configs(ctx)
		if err != nil {
			return err
		}
		for _, c := range configs {
			fmt.Fprintf(cli.out, "%s  %-16s admin=%.2f therapist=%.2f doctor=%.2f platform=%.2f\n",
				c.ID, c.Name, c.AdminPct, c.TherapistPct, c.DoctorPct, c.PlatformFeePct)
		}
		return nil
	case "save":
		if err := saveCmd.Parse(args[1:]); err != nil {
			return err
		}
		cfg := earnings.DistributionConfig{
			ID:   *id,
			Name: *name,
			PercentSplit: earnings.PercentSplit{
				AdminPct:       *adminPct,
				TherapistPct:   *therapistPct,
				DoctorPct:      *doctorPct,
				PlatformFeePct: *platformPct,
			},
		}
		saved, err := cli.earnings.SaveConfig(ctx, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "saved config %s (%s)\n", saved.ID, saved.Name)
		return nil
	default:
		return fmt.Errorf("configs: unknown subcommand %q", args[0])
	}
}

func (cli *commandLine) runEarnings(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}

	cmd := flag.NewFlagSet("earnings", flag.ExitOnError)
	from := cmd.String("from", "", "period start, YYYY-MM-DD")
	to := cmd.String("to", "", "period end, YYYY-MM-DD")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	summaries, err := cli.earnings.Summaries(ctx, *from, *to)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Fprintf(cli.out, "%-24s sessions=%d gross=%.2f therapist=%.2f admin=%.2f doctor=%.2f platform=%.2f\n",
			s.TherapistName, s.Sessions, s.GrossFees, s.TherapistTotal, s.AdminTotal, s.DoctorTotal, s.PlatformTotal)
	}
	return nil
}

func (cli *commandLine) runExport(ctx context.Context, args []string) error {
	if err := cli.requireAdmin(); err != nil {
		return err
	}

	cmd := flag.NewFlagSet("export", flag.ExitOnError)
	report := cmd.String("report", "", "attendance, earnings or discrepancies")
	format := cmd.String("format", "csv", "csv or xlsx")
	outPath := cmd.String("o", "", "output file")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *report == "" || *outPath == "" {
		cmd.Usage()
		return errHelp
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	switch *report {
	case "attendance":
		records, err := cli.attendance.PendingRecords(ctx)
		if err != nil {
			return err
		}
		if *format == "xlsx" {
			err = export.WriteAttendanceXLSX(f, records)
		} else {
			err = export.WriteAttendanceCSV(f, records)
		}
		if err != nil {
			return err
		}
	case "earnings":
		summaries, err := cli.earnings.Summaries(ctx, "", "")
		if err != nil {
			return err
		}
		if *format == "xlsx" {
			err = export.WriteEarningsXLSX(f, summaries)
		} else {
			err = export.WriteEarningsCSV(f, summaries)
		}
		if err != nil {
			return err
		}
	case "discrepancies":
		items, err := cli.attendance.Discrepancies(ctx)
		if err != nil {
			return err
		}
		if *format == "xlsx" {
			err = export.WriteDiscrepanciesXLSX(f, items)
		} else {
			err = export.WriteDiscrepanciesCSV(f, items)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("export: unknown report %q", *report)
	}

	fmt.Fprintf(cli.out, "wrote %s report to %s\n", *report, *outPath)
	return nil
}

func (cli *commandLine) printRecords(records []attendance.AttendanceRecord) {
	for _, r := range records {
		fmt.Fprintf(cli.out, "%s  %s  %-16s therapist=%s notes=%s\n",
			r.ID, r.Date, r.Status, r.TherapistID, r.Notes)
	}
}
