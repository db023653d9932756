// Package cli provides the interactive quotekeeper command-line client.
//
// App wraps an application context with a REPL. Commands that show a
// user's data pass through the route gate, so they wait while the session
// is loading and ask for a login when signed out.
//
//	login / signup / logout / whoami
//	daily
//	quotes, addquote <text>, rmquote <n|id>
//	interests, addinterest <name>, rminterest <n|id>
//	options, toggle <tag>, save
//	reload, exit
//
// Run blocks until the user exits.
package cli
