// Package mail delivers rendered messages.
//
// Three transports implement [Transport]:
//   - [SMTPTransport]: sends through an SMTP submission server with STARTTLS
//     and PLAIN authentication
//   - [FileTransport]: writes each message as <id>.eml into a directory
//   - [ConsoleTransport]: prints each message for inspection, sending nothing
//
// [Deliver] sends a batch of messages through a transport, retrying
// transient failures with [RetryWithBackoff] and stopping at the first
// permanent one.
package mail
