package services

// Notifier surfaces short acknowledgments (toasts) to the user.
type Notifier interface {
	Notify(title, description string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, description string)

func (f NotifierFunc) Notify(title, description string) { f(title, description) }

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}
