// Package game defines the shared vocabulary of a multi-player dynamic game:
// joint dynamics and per-player cost contracts, nominal trajectories
// (operating points), and affine feedback strategies.
//
// The solver package depends only on the interfaces here:
//
//   - [Dynamics]: discrete-time joint dynamics with Jacobians
//   - [Cost]: per-player trajectory cost with local quadraticization
//   - [OperatingPoint]: nominal states and controls over a fixed horizon
//   - [Strategy]: time-indexed feedback law u = uref - P*dx - alpha
//
// Concrete dynamics live in the dynamics package and concrete costs in the
// cost package; neither is imported here.
package game
