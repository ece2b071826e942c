// Package notify renders the message each giver receives.
//
// A [Renderer] executes a text/template against a [match.Match]. The template
// sees .From and .To (name, email, except) and .Themes. Two templates are
// built in, "en" and "fr"; any other name is read as a file path:
//
//	r, err := notify.NewRenderer("en", notify.Options{Sender: "santa@example.com"})
//	msg, err := r.Render(m)
//	_, err = msg.WriteTo(w) // RFC 5322, ready for SMTP or a .eml file
//
// Rendering is deterministic: the same template, options, and match always
// produce the same message, including its Message-ID, which is derived from
// [Options.RunID] and the giver's name.
package notify
