package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

type commandHandler func(ctx context.Context, c *CLI, args []string) error

type command struct {
	path        string
	description string
	usage       string
	handler     commandHandler
}

type CLI struct {
	client      *Client
	serverAddr  string
	rl          *readline.Instance
	running     bool
	commands    []command
	out         *formatter
	currentLine string
}

func NewCLI(client *Client, serverAddr, format string) *CLI {
	c := &CLI{
		client:     client,
		serverAddr: serverAddr,
		running:    true,
		out:        &formatter{format: format},
	}
	c.commands = buildCommands()
	return c
}

func buildCommands() []command {
	return []command{
		{"show groups", "List all bridge groups", "show groups", cmdShowGroups},
		{"show group", "Show one bridge group", "show group <name>", cmdShowGroup},
		{"show config", "Show cached config entries", "show config", cmdShowConfig},
		{"show stats", "Show operation counters", "show stats", cmdShowStats},
		{"show events", "Show event bus counters", "show events", cmdShowEvents},
		{"show version", "Show daemon version", "show version", cmdShowVersion},
		{"add group", "Create a bridge group", "add group <name> <vlan>", cmdAddGroup},
		{"del group", "Delete a bridge group", "del group <name>", cmdDelGroup},
		{"add interface", "Add an interface to a group", "add interface <group> <ifname> [vlan]", cmdAddInterface},
		{"del interface", "Remove an interface from a group", "del interface <group> <ifname> [vlan]", cmdDelInterface},
		{"flush interfaces", "Remove all interfaces from a group", "flush interfaces <group>", cmdFlushInterfaces},
		{"help", "Show this help", "help", cmdHelp},
	}
}

func (c *CLI) Run() error {
	var err error
	c.rl, err = readline.NewEx(&readline.Config{
		Prompt:              "vlanhal> ",
		HistoryFile:         os.ExpandEnv("$HOME/.vlanhalcli_history"),
		AutoComplete:        c.buildCompleter(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		FuncFilterInputRune: c.filterInputWithHelp,
		Listener:            c,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer c.rl.Close()

	c.printBanner()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					break
				}
				continue
			} else if err == io.EOF {
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := c.processCommand(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	return nil
}

func (c *CLI) Stop() {
	c.running = false
}

func (c *CLI) printBanner() {
	fmt.Println("=====================================")
	fmt.Println("    vlanhal Interactive CLI")
	fmt.Println("=====================================")
	fmt.Printf("Connected to: %s\n", c.serverAddr)
	fmt.Println("Type 'help' for available commands")
	fmt.Println("Type 'exit' or 'quit' to exit")
	fmt.Println()
}

func (c *CLI) OnChange(line []rune, pos int, key rune) (newLine []rune, newPos int, ok bool) {
	c.currentLine = string(line)
	return nil, 0, false
}

func (c *CLI) filterInputWithHelp(r rune) (rune, bool) {
	if r == '?' {
		fmt.Print("?\n")
		c.showInlineHelp(c.currentLine)
		c.rl.Write([]byte(c.currentLine))
		return 0, false
	}
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (c *CLI) showInlineHelp(input string) {
	input = strings.TrimSpace(input)
	fmt.Println()
	matched := false
	for _, cmd := range c.commands {
		if input == "" || strings.HasPrefix(cmd.path, input) {
			fmt.Printf("  %-28s %s\n", cmd.usage, cmd.description)
			matched = true
		}
	}
	if !matched {
		for _, cmd := range c.commands {
			if strings.HasPrefix(input, cmd.path) {
				fmt.Printf("  %-28s %s\n", cmd.usage, cmd.description)
				matched = true
			}
		}
	}
	if !matched {
		fmt.Println("  No matching commands")
	}
	fmt.Println()
}

func (c *CLI) buildCompleter() *readline.PrefixCompleter {
	// Group the flat command table by first word so the completer
	// offers "show groups", "show group", etc. under "show".
	byRoot := make(map[string][]string)
	var roots []string
	for _, cmd := range c.commands {
		parts := strings.SplitN(cmd.path, " ", 2)
		if _, seen := byRoot[parts[0]]; !seen {
			roots = append(roots, parts[0])
			byRoot[parts[0]] = nil
		}
		if len(parts) == 2 {
			byRoot[parts[0]] = append(byRoot[parts[0]], parts[1])
		}
	}
	sort.Strings(roots)

	items := make([]readline.PrefixCompleterInterface, 0, len(roots)+2)
	for _, root := range roots {
		var children []readline.PrefixCompleterInterface
		for _, sub := range byRoot[root] {
			children = append(children, readline.PcItem(sub))
		}
		items = append(items, readline.PcItem(root, children...))
	}
	items = append(items, readline.PcItem("exit"), readline.PcItem("quit"))
	return readline.NewPrefixCompleter(items...)
}

func (c *CLI) processCommand(line string) error {
	if line == "exit" || line == "quit" {
		c.running = false
		return nil
	}

	if line == "?" {
		c.showInlineHelp("")
		return nil
	}

	if strings.HasSuffix(line, "?") {
		c.showInlineHelp(strings.TrimSuffix(line, "?"))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return c.dispatch(ctx, line)
}

func (c *CLI) dispatch(ctx context.Context, line string) error {
	// Longest matching command path wins, the rest of the line is args.
	var best *command
	for i := range c.commands {
		cmd := &c.commands[i]
		if line == cmd.path || strings.HasPrefix(line, cmd.path+" ") {
			if best == nil || len(cmd.path) > len(best.path) {
				best = cmd
			}
		}
	}
	if best == nil {
		return fmt.Errorf("unknown command: %q (try 'help')", line)
	}

	args := strings.Fields(strings.TrimPrefix(line, best.path))
	return best.handler(ctx, c, args)
}

func cmdHelp(ctx context.Context, c *CLI, args []string) error {
	c.showInlineHelp("")
	return nil
}

func cmdShowGroups(ctx context.Context, c *CLI, args []string) error {
	groups, err := c.client.ListGroups(ctx)
	if err != nil {
		return err
	}
	return c.out.printGroups(groups)
}

func cmdShowGroup(ctx context.Context, c *CLI, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show group <name>")
	}
	g, err := c.client.GetGroup(ctx, args[0])
	if err != nil {
		return err
	}
	return c.out.printGroup(g)
}

func cmdShowConfig(ctx context.Context, c *CLI, args []string) error {
	entries, err := c.client.ConfigEntries(ctx)
	if err != nil {
		return err
	}
	return c.out.printEntries(entries)
}

func cmdShowStats(ctx context.Context, c *CLI, args []string) error {
	stats, err := c.client.Stats(ctx)
	if err != nil {
		return err
	}
	return c.out.printStats(stats)
}

func cmdShowEvents(ctx context.Context, c *CLI, args []string) error {
	stats, err := c.client.Events(ctx)
	if err != nil {
		return err
	}
	if c.out.format == formatJSON {
		return c.out.printJSON(stats)
	}
	fmt.Printf("Published: %d\n", stats.Published)
	fmt.Printf("Dropped:   %d\n", stats.Dropped)
	fmt.Printf("Queue:     %d/%d\n", stats.PublishChLen, stats.PublishChCap)
	for _, t := range stats.Topics {
		fmt.Printf("Topic %s: %d subscribers\n", t.Topic, t.Subscribers)
	}
	return nil
}

func cmdShowVersion(ctx context.Context, c *CLI, args []string) error {
	info, err := c.client.Version(ctx)
	if err != nil {
		return err
	}
	if c.out.format == formatJSON {
		return c.out.printJSON(info)
	}
	fmt.Printf("Version: %s\nCommit:  %s\nBuilt:   %s\n", info.Version, info.Commit, info.Date)
	return nil
}

func cmdAddGroup(ctx context.Context, c *CLI, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: add group <name> <vlan>")
	}
	if err := c.client.AddGroup(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Group %s created\n", args[0])
	return nil
}

func cmdDelGroup(ctx context.Context, c *CLI, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: del group <name>")
	}
	if err := c.client.DeleteGroup(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Group %s deleted\n", args[0])
	return nil
}

func cmdAddInterface(ctx context.Context, c *CLI, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: add interface <group> <ifname> [vlan]")
	}
	vlanID := ""
	if len(args) == 3 {
		vlanID = args[2]
	}
	if err := c.client.AddInterface(ctx, args[0], args[1], vlanID); err != nil {
		return err
	}
	fmt.Printf("Interface %s added to %s\n", args[1], args[0])
	return nil
}

func cmdDelInterface(ctx context.Context, c *CLI, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: del interface <group> <ifname> [vlan]")
	}
	vlanID := ""
	if len(args) == 3 {
		vlanID = args[2]
	}
	if err := c.client.DeleteInterface(ctx, args[0], args[1], vlanID); err != nil {
		return err
	}
	fmt.Printf("Interface %s removed from %s\n", args[1], args[0])
	return nil
}

func cmdFlushInterfaces(ctx context.Context, c *CLI, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: flush interfaces <group>")
	}
	if err := c.client.FlushInterfaces(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Interfaces flushed from %s\n", args[0])
	return nil
}
