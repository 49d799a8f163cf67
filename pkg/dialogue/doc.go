// Package dialogue implements the slot-filling conversation state machine.
//
// An Engine turns utterances into Responses. Each session holds at most one
// pending action which moves through SLOT_FILLING and, for state-changing
// intents, CONFIRMING before it is translated and executed. Executing is
// transient: the session always returns to IDLE once the result is known.
//
// Sessions are serialized through session.Manager, so concurrent calls for the
// same session ID observe each other's effects in order.
package dialogue
