/*
Package session implements the Session Context: per-conversation state access.

Every operation on a session runs under that session's lock, so turns of one
conversation are serialized while different conversations proceed in parallel.
A DistributedLocker extends the guarantee across replicas sharing a store.
*/
package session
