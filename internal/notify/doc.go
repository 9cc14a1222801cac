// Package notify delivers ticket lifecycle notifications.
//
// Callers hand a Notification to Dispatcher.Notify, which enqueues it and
// returns immediately. Worker goroutines render the event template and
// send one email per recipient, then fan the event out to any extra
// channels (Telegram admin chat, Kafka topic). Delivery is best-effort:
// failures are logged and never reach the request that triggered them.
// Without SMTP credentials the mailer logs a warning and skips the send.
package notify
