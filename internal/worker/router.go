package worker

import "fmt"

type EventHandler func(data []byte) error

// Router dispatches an event to its registered handlers in order.
type Router struct {
	handlers map[string][]EventHandler
}

func NewRouter(handlers map[string][]EventHandler) *Router {
	return &Router{
		handlers: handlers,
	}
}

func (r *Router) Handle(event string, data []byte) error {
	handlers, ok := r.handlers[event]
	if !ok {
		// Unknown events are skipped, not failed: the topic is shared.
		return nil
	}

	for _, handler := range handlers {
		if err := handler(data); err != nil {
			return fmt.Errorf("handler for %s: %w", event, err)
		}
	}

	return nil
}
