package facilitator

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"unicode"

	"foodmemories/internal/model"
	"foodmemories/internal/workshop"
)

var errQuit = errors.New("quit")

// Console is a line-oriented front end for a Session.
type Console struct {
	s   *Session
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(s *Session, out io.Writer) *Console {
	return &Console{s: s, out: out}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) printUsage() {
	c.printf(`Commands:
  show                          current module
  next | prev                   move through modules
  day N | phase N               jump to a day (1-2) or a phase of the current day (1-based)
  done [MODULE_ID]              toggle the completed mark
  notes [TEXT]                  show or replace session notes
  timer start [MIN] | stopwatch | pause | resume | reset | show
  checklist [ITEM_ID]           show the checklist or toggle an item
  participants [refresh]        list participants
  participant add|edit|rm ...   manage participants (see "participant add -h")
  photos [refresh|all]          photos of the current module
  photo upload|rm ...           manage photos (see "photo upload -h")
  errors | dismiss PANEL        show or clear panel errors
  export PATH                   write participants to a JSON file
  quit
`)
}

// Run reads commands until EOF, "quit" or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	c.printf("> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-c.s.Alerts():
			c.printf("\a\n[timer] %s\n> ", msg)
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			err := c.Exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil && !errors.Is(err, flag.ErrHelp) {
				c.printf("error: %v\n", err)
			}
			c.printf("> ")
		}
	}
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	nav := c.s.Navigator()

	switch args[0] {
	case "help", "?":
		c.printUsage()
	case "quit", "exit":
		return errQuit
	case "show":
		c.showModule()
	case "next":
		if !nav.Next() {
			c.printf("already at the last module\n")
		}
		c.showHeader()
	case "prev":
		if !nav.Previous() {
			c.printf("already at the first module\n")
		}
		c.showHeader()
	case "day":
		n, err := intArg(args, 1)
		if err != nil {
			return err
		}
		if err := nav.SelectDay(n); err != nil {
			return err
		}
		c.showHeader()
	case "phase":
		n, err := intArg(args, 1)
		if err != nil {
			return err
		}
		if err := nav.SelectPhase(n - 1); err != nil {
			return err
		}
		c.showHeader()
	case "done":
		id := nav.Current().ID
		if len(args) > 1 {
			id = args[1]
		}
		if _, ok := c.s.Content().Find(id); !ok {
			return fmt.Errorf("unknown module %q", id)
		}
		if nav.ToggleComplete(id) {
			c.printf("module %s marked complete\n", id)
		} else {
			c.printf("module %s marked incomplete\n", id)
		}
	case "notes":
		if len(args) > 1 {
			nav.SetNotes(strings.Join(args[1:], " "))
		}
		c.printf("%s\n", nav.Notes())
	case "timer":
		return c.timerCmd(args[1:])
	case "checklist":
		return c.checklistCmd(args[1:])
	case "participants":
		if len(args) > 1 && args[1] == "refresh" {
			if err := c.s.RefreshParticipants(ctx); err != nil {
				return err
			}
		}
		c.listParticipants()
	case "participant":
		return c.participantCmd(ctx, args[1:])
	case "photos":
		if len(args) > 1 && args[1] == "refresh" {
			if err := c.s.RefreshPhotos(ctx); err != nil {
				return err
			}
		}
		if len(args) > 1 && args[1] == "all" {
			c.listPhotos(c.s.Photos())
		} else {
			c.listPhotos(c.s.CurrentPhotos())
		}
	case "photo":
		return c.photoCmd(ctx, args[1:])
	case "errors":
		found := false
		for _, p := range Panels {
			if msg := c.s.Error(p); msg != "" {
				c.printf("%-12s %s\n", p, msg)
				found = true
			}
		}
		if !found {
			c.printf("no errors\n")
		}
	case "dismiss":
		if len(args) < 2 {
			return errors.New("usage: dismiss participants|photos|upload")
		}
		c.s.DismissError(Panel(args[1]))
	case "export":
		if len(args) < 2 {
			return errors.New("usage: export PATH")
		}
		n, err := c.s.ExportParticipants(args[1])
		if err != nil {
			return err
		}
		c.printf("exported %d participants to %s\n", n, args[1])
	default:
		c.printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func (c *Console) showHeader() {
	nav := c.s.Navigator()
	pos := nav.Position()
	day, _ := c.s.Content().Day(pos.Day)
	m := nav.Current()
	mark := " "
	if nav.IsComplete(m.ID) {
		mark = "x"
	}
	c.printf("%s / %s\n[%s] %s %s (%s)\n", day.Title, day.Phases[pos.Phase].Name, mark, m.ID, m.Title, m.Duration)
}

func (c *Console) showModule() {
	c.showHeader()
	m := c.s.Navigator().Current()
	var b strings.Builder
	fmt.Fprintf(&b, "Purpose: %s\nSteps:\n", m.Purpose)
	for i, st := range m.Steps {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, st)
	}
	b.WriteString("Materials:\n")
	for _, it := range m.Materials {
		fmt.Fprintf(&b, "  - %s\n", it)
	}
	b.WriteString("Tips:\n")
	for _, it := range m.Tips {
		fmt.Fprintf(&b, "  - %s\n", it)
	}
	fmt.Fprintf(&b, "Timer: %s\n", c.s.Timer().Display())
	c.printf("%s", b.String())
}

func (c *Console) timerCmd(args []string) error {
	t := c.s.Timer()
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "start":
		minutes := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid minutes %q", args[1])
			}
			minutes = n
		}
		c.s.StartModuleTimer(minutes)
	case "stopwatch":
		t.StartStopwatch()
	case "pause":
		t.Pause()
	case "resume":
		t.Resume()
	case "reset":
		t.Reset()
	case "show":
	default:
		return fmt.Errorf("unknown timer command %q", sub)
	}
	st := t.State()
	state := "stopped"
	if st.Running {
		state = "running"
	}
	if st.Mode == workshop.ModeIdle {
		state = "idle"
	}
	c.printf("%s %s\n", workshop.FormatSeconds(st), state)
	return nil
}

func (c *Console) checklistCmd(args []string) error {
	cl := c.s.Checklist()
	if cl == nil {
		return errors.New("checklist is not available")
	}
	if len(args) > 0 {
		if _, err := cl.Toggle(args[0]); err != nil {
			return err
		}
	}
	var b strings.Builder
	for _, sec := range workshop.ChecklistSections() {
		fmt.Fprintf(&b, "%s\n", sec.Title)
		for _, it := range sec.Items {
			mark := " "
			if cl.Done(it.ID) {
				mark = "x"
			}
			fmt.Fprintf(&b, "  [%s] %-20s %s\n", mark, it.ID, it.Label)
		}
	}
	done, total := cl.Progress()
	fmt.Fprintf(&b, "%d/%d done\n", done, total)
	c.printf("%s", b.String())
	return nil
}

func (c *Console) listParticipants() {
	items := c.s.Participants()
	if msg := c.s.Error(PanelParticipants); msg != "" {
		c.printf("! %s\n", msg)
	}
	if len(items) == 0 {
		c.printf("no participants\n")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDIETARY\tCULTURAL")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, p.Dietary, p.Cultural)
	}
	tw.Flush()
}

func (c *Console) listPhotos(items []model.Photo) {
	if msg := c.s.Error(PanelPhotos); msg != "" {
		c.printf("! %s\n", msg)
	}
	if msg := c.s.Error(PanelUpload); msg != "" {
		c.printf("! upload: %s\n", msg)
	}
	if len(items) == 0 {
		c.printf("no photos\n")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDAY\tMODULE\tNAME\tPARTICIPANTS\tURL")
	for _, p := range items {
		names := make([]string, 0, len(p.Participants))
		for _, pp := range p.Participants {
			names = append(names, pp.Name)
		}
		sort.Strings(names)
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", p.ID, p.Day, p.ModuleID, p.OriginalName, strings.Join(names, ", "), p.URL)
	}
	tw.Flush()
}

func (c *Console) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func (c *Console) participantCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: participant add|edit|rm")
	}
	switch args[0] {
	case "add", "edit":
		fs := c.newFlagSet("participant " + args[0])
		id := fs.String("id", "", "participant id (edit only)")
		name := fs.String("name", "", "name (required)")
		email := fs.String("email", "", "email")
		dietary := fs.String("dietary", "", "dietary requirements")
		cultural := fs.String("cultural", "", "cultural background")
		notes := fs.String("notes", "", "notes")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if args[0] == "edit" && *id == "" {
			fs.Usage()
			return flag.ErrHelp
		}
		if args[0] == "add" {
			*id = ""
		}
		p, err := c.s.SaveParticipant(ctx, *id, model.ParticipantFields{
			Name: *name, Email: *email, Dietary: *dietary, Cultural: *cultural, Notes: *notes,
		})
		if err != nil {
			return err
		}
		c.printf("saved participant %s (%s)\n", p.Name, p.ID)
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: participant rm ID")
		}
		if err := c.s.DeleteParticipant(ctx, args[1]); err != nil {
			return err
		}
		c.printf("deleted participant %s\n", args[1])
	default:
		return fmt.Errorf("unknown participant command %q", args[0])
	}
	return nil
}

func (c *Console) photoCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: photo upload|rm")
	}
	switch args[0] {
	case "upload":
		fs := c.newFlagSet("photo upload")
		participants := fs.String("participants", "", "comma-separated participant ids")
		caption := fs.String("caption", "", "caption")
		notes := fs.String("notes", "", "notes")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			fs.Usage()
			return flag.ErrHelp
		}
		var ids []string
		for _, id := range strings.Split(*participants, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		uploaded, err := c.s.UploadPhotos(ctx, fs.Args(), UploadOptions{ParticipantIDs: ids, Caption: *caption, Notes: *notes})
		for _, p := range uploaded {
			c.printf("uploaded %s -> %s\n", p.OriginalName, p.URL)
		}
		return err
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: photo rm ID")
		}
		if err := c.s.DeletePhoto(ctx, args[1]); err != nil {
			return err
		}
		c.printf("deleted photo %s\n", args[1])
	default:
		return fmt.Errorf("unknown photo command %q", args[0])
	}
	return nil
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("usage: %s N", args[0])
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[i])
	}
	return n, nil
}

// splitArgs splits a line on whitespace, honouring single and double quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}
