package events

import (
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"gopkg.in/yaml.v3"
)

// StepPrinterFunc returns a router handler that prints loop progress to w.
func StepPrinterFunc(w io.Writer) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}
		return PrintEvent(w, e)
	}
}

// PrintEvent writes a short human readable line for e.
func PrintEvent(w io.Writer, e Event) error {
	var err error
	switch p_ := e.(type) {
	case *EventQueryStart:
		_, err = fmt.Fprintf(w, "--- query %s: %s\n", p_.Metadata().QueryID, p_.Query)
	case *EventRoundStart:
		if p_.ToolsOffered {
			_, err = fmt.Fprintf(w, "--- round %d/%d\n", p_.Metadata().Round, p_.MaxRounds)
		} else {
			_, err = fmt.Fprintf(w, "--- synthesis\n")
		}
	case *EventToolCall:
		v_, err := yaml.Marshal(map[string]string{
			"id":        p_.ToolCall.ID,
			"name":      p_.ToolCall.Name,
			"arguments": string(p_.ToolCall.Arguments),
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "[tool call]\n%s", v_)
		return err
	case *EventToolResult:
		v_, err := yaml.Marshal(p_.ToolResult)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "[tool result]\n%s", v_)
		return err
	case *EventSources:
		for _, s := range p_.Sources {
			if _, err := fmt.Fprintf(w, "[source] %s\n", s.Label()); err != nil {
				return err
			}
		}
	case *EventFinal:
		_, err = fmt.Fprintf(w, "--- done (%s)\n", p_.Outcome)
	case *EventError:
		_, err = fmt.Fprintf(w, "[error] %s\n", p_.ErrorString)
	}
	return err
}
