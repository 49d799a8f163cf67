/*
Package domain contains the core models of the conversational command pipeline.

It defines the entities shared by the dialogue engine, the command translator and
the process executor. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - IntentSpec: The catalog entry of an intent (ordered slots, mutating flag).
  - PendingAction: The single in-flight action of a session and its conversation state.
  - Session: Per-conversation state (pending action, bounded history, last used values).
  - InvocationSpec: The fully resolved external operation (program, group, subcommand, argv).
  - ExecutionResult: The classified outcome of one invocation.
  - Response: What the dialogue engine hands back to the presentation layer.
*/
package domain
