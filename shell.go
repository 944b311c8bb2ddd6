// File: meetsync/shell.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"meetsync/client"
	"meetsync/models"
	"meetsync/services/meeting"
	"meetsync/services/session"
)

// runShell reads commands from stdin until EOF or ctx is cancelled. It is
// the command surface the original UI actions map onto.
func runShell(ctx context.Context, sess *session.Session, svc meeting.Service, api *client.Client) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println("meetsync shell — type 'help' for commands")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "quit" {
				return
			}
			dispatch(ctx, sess, svc, api, strings.Fields(line))
		}
	}
}

func dispatch(ctx context.Context, sess *session.Session, svc meeting.Service, api *client.Client, args []string) {
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "help":
		fmt.Println(`commands:
  list                                  show the meeting collection
  sort DATE|TITLE|STATUS                reorder the collection
  create <duration> <day,day..> <invitee-id,..|-> <title>
                                        create a meeting, '-' for no invitees
  respond <id> accept <day,day..>       accept with workable days
  respond <id> decline                  decline
  user <id|username>                    look up an account
  plan <id>                             fetch availability and show options
  confirm <id> <startTime>              schedule at the chosen slot
  delete <id>                           delete a meeting
  quit`)
	case "list":
		for _, m := range sess.Snapshot() {
			printMeeting(m)
		}
	case "sort":
		if len(args) < 2 {
			fmt.Println("usage: sort DATE|TITLE|STATUS")
			return
		}
		sess.Sort(models.SortOption(args[1]))
		for _, m := range sess.Snapshot() {
			printMeeting(m)
		}
	case "create":
		if len(args) < 5 {
			fmt.Println("usage: create <duration> <day,day..> <invitee-id,..|-> <title>")
			return
		}
		duration, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("bad duration:", args[1])
			return
		}
		var invitees []int64
		if args[3] != "-" {
			for _, field := range strings.Split(args[3], ",") {
				id, err := strconv.ParseInt(field, 10, 64)
				if err != nil {
					fmt.Println("bad invitee id:", field)
					return
				}
				invitees = append(invitees, id)
			}
		}
		created, err := svc.Create(ctx, models.CreateMeetingRequest{
			Title:        strings.Join(args[4:], " "),
			PossibleDays: strings.Split(args[2], ","),
			Participants: invitees,
			Duration:     duration,
		})
		if err != nil {
			fmt.Println("create failed:", err)
			return
		}
		printMeeting(*created)
	case "respond":
		id, err := meetingID(args)
		if err != nil {
			fmt.Println(err)
			return
		}
		if len(args) < 3 {
			fmt.Println("usage: respond <id> accept <day,day..> | respond <id> decline")
			return
		}
		req := models.RespondRequest{Status: models.AcceptDeclined}
		if args[2] == "accept" {
			req.Status = models.AcceptAccepted
			if len(args) > 3 {
				req.SelectedDays = strings.Split(args[3], ",")
			}
		}
		if err := svc.Respond(ctx, id, req); err != nil {
			fmt.Println("respond failed:", err)
			return
		}
		fmt.Println("response recorded")
	case "user":
		if len(args) < 2 {
			fmt.Println("usage: user <id|username>")
			return
		}
		var u *models.User
		var err error
		if id, convErr := strconv.ParseInt(args[1], 10, 64); convErr == nil {
			u, err = api.UserByID(ctx, id)
		} else {
			u, err = api.UserByUsername(ctx, args[1])
		}
		if err != nil {
			fmt.Println("lookup failed:", err)
			return
		}
		fmt.Printf("  #%d %s\n", u.ID, u.Username)
	case "plan":
		id, err := meetingID(args)
		if err != nil {
			fmt.Println(err)
			return
		}
		plan, err := svc.ConfirmationOptions(ctx, id)
		if err != nil {
			fmt.Println("plan failed:", err)
			return
		}
		printPlan(plan)
	case "confirm":
		id, err := meetingID(args)
		if err != nil {
			fmt.Println(err)
			return
		}
		if len(args) < 3 {
			fmt.Println("usage: confirm <id> <startTime>")
			return
		}
		if err := svc.Confirm(ctx, id, models.ScheduleRequest{StartTime: args[2]}); err != nil {
			fmt.Println("confirm failed:", err)
			return
		}
		fmt.Println("meeting scheduled")
	case "delete":
		id, err := meetingID(args)
		if err != nil {
			fmt.Println(err)
			return
		}
		if err := svc.Remove(ctx, id); err != nil {
			fmt.Println("delete failed:", err)
			return
		}
		fmt.Println("meeting deleted")
	default:
		fmt.Println("unknown command:", args[0])
	}
}

func meetingID(args []string) (int64, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: %s <id> ...", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad meeting id: %s", args[1])
	}
	return id, nil
}

func printMeeting(m models.Meeting) {
	when := strings.Join(m.PossibleDays, ",")
	if m.StartTime != "" {
		when = m.StartTime
	}
	kind := ""
	if m.IsPersonal {
		kind = " [personal]"
	}
	fmt.Printf("  #%d %-8s %s%s — %s (%d min, %d participants)\n",
		m.ID, m.Status, m.Title, kind, when, m.Duration, len(m.Participants))
}

func printPlan(plan *meeting.ConfirmationPlan) {
	switch plan.Decision.Outcome {
	case meeting.OutcomeVoid:
		fmt.Println("cannot be confirmed:", plan.Decision.Reason, "— delete the meeting")
	case meeting.OutcomeArbitrate:
		fmt.Println(plan.Decision.Reason, "— wait, or delete the meeting")
	case meeting.OutcomeSelectable:
		fmt.Printf("best case %d attendee(s); %d slot(s):\n", plan.Summary.MaxCount, len(plan.Options))
		for i, opt := range plan.Options {
			if i == 10 {
				fmt.Printf("  ... %d more\n", len(plan.Options)-i)
				break
			}
			fmt.Printf("  %s %s  -> confirm with %s\n", opt.DateLabel, opt.TimeLabel, opt.ID)
		}
	}
}
