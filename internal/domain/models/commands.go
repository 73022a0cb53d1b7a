package models

import "strings"

// CommandType enumerates the chat commands the store manager can send.
type CommandType string

const (
	CommandStock   CommandType = "stock"
	CommandLow     CommandType = "low"
	CommandOrders  CommandType = "orders"
	CommandReceive CommandType = "receive"
	CommandReport  CommandType = "report"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text. Args keep
// their original case since barcodes and purchase order ids are case-sensitive.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages. The
// leading slash is optional.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch CommandType(head) {
	case CommandStock, CommandLow, CommandOrders, CommandReceive, CommandReport, CommandHelp:
		cmd.Type = CommandType(head)
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
