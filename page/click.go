package page

import (
	"context"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
)

// DirectClickTimeout bounds the first click attempt regardless of the
// configured explicit wait.
const DirectClickTimeout = 5 * time.Second

// ClickStrategy is one way of clicking an element.
type ClickStrategy struct {
	Name  string
	Click func(ctx context.Context, s driver.Session, selector string) error
}

// DirectClick waits for the element to be clickable and clicks it natively.
var DirectClick = ClickStrategy{
	Name: "direct",
	Click: func(ctx context.Context, s driver.Session, selector string) error {
		if err := waitFor(ctx, s, selector, driver.Clickable, DirectClickTimeout); err != nil {
			return err
		}
		return s.Click(ctx, selector, DirectClickTimeout)
	},
}

// PointerClick moves the mouse over the element and clicks at that point.
var PointerClick = ClickStrategy{
	Name: "pointer",
	Click: func(ctx context.Context, s driver.Session, selector string) error {
		return s.PointerClick(ctx, selector)
	},
}

// ScriptClick scrolls the element into view and clicks it from page script.
var ScriptClick = ClickStrategy{
	Name: "script",
	Click: func(ctx context.Context, s driver.Session, selector string) error {
		if err := s.EvalOnElement(ctx, selector, "el.scrollIntoView(true);"); err != nil {
			return err
		}
		return s.EvalOnElement(ctx, selector, "el.click();")
	},
}

// DefaultClickStrategies returns the built-in strategies, most native first.
func DefaultClickStrategies() []ClickStrategy {
	return []ClickStrategy{DirectClick, PointerClick, ScriptClick}
}
