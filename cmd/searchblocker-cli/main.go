// Package main provides the searchblocker-cli command-line tool for checking
// policy files and trying terms against them without running the daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/filter"
	"github.com/in-session/magento2-search-blocker/internal/policy"
	"github.com/in-session/magento2-search-blocker/internal/version"
	"github.com/in-session/magento2-search-blocker/search"

	// Register built-in filters so they appear in the filter list.
	_ "github.com/in-session/magento2-search-blocker/internal/filters/blacklist"
	_ "github.com/in-session/magento2-search-blocker/internal/filters/patternfilter"
)

const usage = `searchblocker-cli — search-term blocker command line tool

Usage:
  searchblocker-cli <command> [arguments]

Commands:
  validate <config-file>                   Validate a policy file (JSON/YAML)
  check <channel> <term> [config-file]     Validate one term; default policy if no file given
  filters                                  List all registered filters
  version                                  Print version info
  help                                     Show this help
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "validate":
		cmdValidate()
	case "check":
		cmdCheck()
	case "filters":
		for _, name := range filter.RegisteredFilters() {
			fmt.Println(name)
		}
	case "version":
		fmt.Println("searchblocker-cli " + version.String())
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		fmt.Print(usage)
		os.Exit(1)
	}
}

func cmdValidate() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: searchblocker-cli validate <config-file>")
		os.Exit(1)
	}
	cfg, err := searchblocker.LoadConfig(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := searchblocker.ValidateConfig(*cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %d blacklist term(s), regex filter %s\n",
		len(searchblocker.ParseList(cfg.Blacklist)), onOff(cfg.RegexFilter))
}

func cmdCheck() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: searchblocker-cli check <channel> <term> [config-file]")
		os.Exit(1)
	}

	ch, err := search.ParseChannel(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v (use %s)\n", err, channelList())
		os.Exit(1)
	}

	cfg := searchblocker.DefaultConfig()
	if len(os.Args) > 4 {
		loaded, err := searchblocker.LoadConfig(os.Args[4])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	v := searchblocker.New(policy.NewStaticStore(cfg))
	verdict := v.Validate(context.Background(), ch, os.Args[3])
	if verdict.Blocked {
		fmt.Printf("BLOCKED (%s): %s\n", verdict.Reason, verdict.Message)
		os.Exit(1)
	}
	fmt.Println("ALLOWED")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func channelList() string {
	names := make([]string, 0, 3)
	for _, ch := range search.Channels() {
		names = append(names, string(ch))
	}
	return strings.Join(names, ", ")
}
