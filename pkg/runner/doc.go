/*
Package runner implements the interactive loop that connects a user to the dialogue engine.

The runner reads utterances through a pluggable IOHandler, sanitizes them, hands
them to the engine one turn at a time and presents the returned responses.
Interrupts are turn-scoped: Ctrl+C while a command is running cancels that
command (the executor terminates its process group) and the loop keeps going;
Ctrl+C at the prompt ends the session.

# Key Components

  - Runner: the REPL loop (Run) and the one-shot mode (Exec).
  - TextHandler: line-oriented terminal IO with an optional markdown renderer.
  - JSONHandler: JSON-Lines IO for scripted clients.
  - ConfirmPolicy: answers confirmation requests when nobody is at the prompt.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithLogger(logger),
	)

	if err := r.Run(ctx, engine, sessionID); err != nil {
		log.Fatal(err)
	}
*/
package runner
