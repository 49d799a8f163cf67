/*
Package ports defines the driven ports (interfaces) of the command pipeline.

These interfaces decouple the dialogue engine and the process executor from external
implementations, allowing them to work with various storage backends, classifiers
and secret sources.

# Key Interfaces

  - SessionStore: Persists per-conversation Session state.
  - PreferencesStore: Remembered defaults shared across sessions.
  - SecretProvider: Yields a credential without echoing it.
  - IntentClassifier: Turns an utterance into an intent plus partial slots.
  - ValidatorDirectory: Resolves validator names to hotkey addresses.
  - AuditSink: Receives one redacted record per invocation.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
