package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

func Print(payload map[string]any, format string, quiet bool) error {
	if quiet {
		format = "quiet"
	}
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = DefaultFormat()
	}

	switch format {
	case "json":
		return printJSON(payload)
	case "table":
		return printTable(payload)
	case "plain":
		return printPlain(payload)
	case "quiet":
		return printQuiet(payload)
	default:
		return errors.New("invalid --format value")
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printTable(payload map[string]any) error {
	switch {
	case hasKey(payload, "agents"):
		fmt.Println("NAME\tROLE\tLOCATION\tLAST_SEEN\tJOINED")
		for _, row := range toObjectSlice(payload["agents"]) {
			profile := toObject(row["profile"])
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				str(row["name"]), str(profile["role"]), str(profile["location"]),
				str(row["last_seen"]), str(row["joined"]))
		}
	case hasKey(payload, "stats"):
		stats := toObject(payload["stats"])
		fmt.Println("AGENTS\tMESSAGES\tUNREAD")
		fmt.Printf("%s\t%s\t%s\n",
			str(stats["agents"]), str(stats["messages"]), str(stats["unread_messages"]))
	case hasKey(payload, "status"):
		fmt.Println("STATUS\tVERSION\tUPTIME_SECONDS")
		fmt.Printf("%s\t%s\t%s\n",
			str(payload["status"]), str(payload["version"]), str(payload["uptime_seconds"]))
	default:
		return printJSON(payload)
	}
	return nil
}

func printPlain(payload map[string]any) error {
	switch {
	case hasKey(payload, "agents"):
		for _, row := range toObjectSlice(payload["agents"]) {
			profile := toObject(row["profile"])
			fmt.Printf("%s %s\n", str(row["name"]), str(profile["role"]))
		}
	case hasKey(payload, "stats"):
		stats := toObject(payload["stats"])
		fmt.Printf("agents=%s messages=%s unread=%s\n",
			str(stats["agents"]), str(stats["messages"]), str(stats["unread_messages"]))
	case hasKey(payload, "status"):
		fmt.Printf("%s %s\n", str(payload["status"]), str(payload["version"]))
	default:
		return printJSON(payload)
	}
	return nil
}

func printQuiet(payload map[string]any) error {
	switch {
	case hasKey(payload, "agents"):
		for _, row := range toObjectSlice(payload["agents"]) {
			fmt.Println(str(row["name"]))
		}
	case hasKey(payload, "status"):
		fmt.Println(str(payload["status"]))
	default:
		return printJSON(payload)
	}
	return nil
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func toObject(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

func toObjectSlice(v any) []map[string]any {
	in, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(in))
	for _, item := range in {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return "-"
		}
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
