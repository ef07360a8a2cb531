package builtin

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

const (
	maxDice  = 20
	maxSides = 1000
)

func (c *Commands) roll(p *session.Player, args *command.Args) {
	var count, sides int
	if !args.Apply(command.OptionalOr(&count, 1), command.OptionalOr(&sides, 6)) {
		c.sendUsage(p, "roll")
		return
	}
	if count < 1 || count > maxDice || sides < 2 || sides > maxSides {
		_ = p.Sendf("Roll between 1 and %d dice with 2 to %d sides.", maxDice, maxSides)
		return
	}

	rolls := make([]string, count)
	total := 0
	for i := range rolls {
		v := c.rng.IntN(sides) + 1
		total += v
		rolls[i] = fmt.Sprint(v)
	}

	c.logger.Debug("dice roll",
		zap.Int("player", p.ID),
		zap.Int("count", count),
		zap.Int("sides", sides),
		zap.Int("total", total),
	)
	c.sessions.Broadcast(fmt.Sprintf("%s rolls %dd%d: [%s] = %d",
		p.Name(), count, sides, strings.Join(rolls, " "), total))
}

func (c *Commands) calc(p *session.Player, args *command.Args) {
	var a, b float64
	var op string
	if !args.Apply(command.Required(&a), command.Required(&op), command.Required(&b)) {
		c.sendUsage(p, "calc")
		return
	}

	var result float64
	switch op {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*", "x":
		result = a * b
	case "/":
		if b == 0 {
			_ = p.Send("Division by zero.")
			return
		}
		result = a / b
	default:
		_ = p.Sendf("Unknown operator %q.", op)
		return
	}
	_ = p.Sendf("%g %s %g = %g", a, op, b, result)
}
