// Package session runs MuSig signing sessions across participants that do
// not share memory.
//
// A [Coordinator] talks to every signer through the [Participant]
// interface. [LocalParticipant] is the in-process implementation; a network
// transport implements the same interface on the remote side.
//
// # Rounds
//
// [Coordinator.Run] drives four rounds, each a barrier over all
// participants:
//
//  1. keys: collect every public key and aggregate them.
//  2. commit: every participant samples a fresh nonce and returns its
//     commitment t_i.
//  3. reveal: every participant opens R_i. The coordinator checks each
//     opening against its commitment and sums R.
//  4. sign: every participant re-checks all openings, derives its own
//     coefficient and the challenge, and returns s_i. The coordinator
//     verifies each partial signature before summing them.
//
// A round that does not collect every answer within Config.RoundTimeout
// fails with a [*TimeoutError] naming the missing participants. Any failure
// aborts the session on every participant, which erases its nonce and
// retires the session ID.
//
// # Example
//
//	m := musig.New(ristretto.New())
//	c := session.NewCoordinator(m, session.Config{RoundTimeout: 5 * time.Second},
//		session.WithLogger(logger),
//		session.WithMetrics(session.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//
//	alice, _ := session.GenerateLocalParticipant(m, rand.Reader)
//	bob, _ := session.GenerateLocalParticipant(m, rand.Reader)
//	res, err := c.Run(ctx, []session.Participant{alice, bob}, message)
//
// # Transport Agnostic
//
// This package does not handle network communication. A remote
// [Participant] must authenticate the coordinator and keep its nonces on
// the signer's side.
package session
