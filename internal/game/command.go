package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Op names a command a presentation layer can send to a session.
type Op string

const (
	OpInitialize             Op = "init"
	OpShuffle                Op = "shuffle"
	OpDraw                   Op = "draw"
	OpShuffleHand            Op = "shuffle-hand"
	OpMoveHandCardToDeckTop  Op = "hand-top"
	OpRecycleHandCard        Op = "hand-recycle"
	OpDiscardHandCard        Op = "discard"
	OpChannelRunes           Op = "channel"
	OpExhaustToggle          Op = "exhaust"
	OpBulkExhaust            Op = "exhaust-many"
	OpBulkAwaken             Op = "awaken-many"
	OpMoveFieldRuneToDeckTop Op = "rune-top"
	OpRecycleFieldRune       Op = "rune-recycle"
	OpExhaustLegend          Op = "legend-exhaust"
	OpAwakenLegend           Op = "legend-awaken"
	OpSnapshot               Op = "snapshot"
)

// Command is one request to a session.
type Command struct {
	Op    Op
	Zone  Zone // OpShuffle
	Index int  // hand or field index
	Count int  // OpChannelRunes, OpBulkExhaust, OpBulkAwaken
}

// Result is the outcome of a dispatched command.
type Result struct {
	Snapshot Snapshot
	Count    int // runes channelled or toggled by count commands
	Err      error
}

type argKind int

const (
	argNone argKind = iota
	argIndex
	argCount
	argZone
)

var commandArgs = map[Op]argKind{
	OpInitialize:             argNone,
	OpShuffle:                argZone,
	OpDraw:                   argNone,
	OpShuffleHand:            argNone,
	OpMoveHandCardToDeckTop:  argIndex,
	OpRecycleHandCard:        argIndex,
	OpDiscardHandCard:        argIndex,
	OpChannelRunes:           argCount,
	OpExhaustToggle:          argIndex,
	OpBulkExhaust:            argCount,
	OpBulkAwaken:             argCount,
	OpMoveFieldRuneToDeckTop: argIndex,
	OpRecycleFieldRune:       argIndex,
	OpExhaustLegend:          argNone,
	OpAwakenLegend:           argNone,
	OpSnapshot:               argNone,
}

// ParseCommand reads a console line such as "draw", "discard 2" or
// "shuffle runeLibrary".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	op := Op(strings.ToLower(fields[0]))
	kind, ok := commandArgs[op]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}

	cmd := Command{Op: op, Index: -1}
	if kind == argNone {
		if len(fields) > 1 {
			return Command{}, fmt.Errorf("%s takes no arguments", op)
		}
		return cmd, nil
	}

	if len(fields) != 2 {
		return Command{}, fmt.Errorf("%s takes exactly one argument", op)
	}
	arg := fields[1]

	switch kind {
	case argZone:
		cmd.Zone = Zone(arg)
	case argIndex, argCount:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return Command{}, fmt.Errorf("invalid argument %q for %s: %w", arg, op, err)
		}
		if kind == argIndex {
			cmd.Index = n
		} else {
			cmd.Count = n
		}
	}

	return cmd, nil
}
