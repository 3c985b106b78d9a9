// Package physics holds the fixed scalar constants for the acoustic medium
// the simulation runs in (air at 20 degrees Celsius).
package physics

// SpeedOfSound is c, the speed of sound in air at 20C, in m/s.
const SpeedOfSound = 343.21

// Density is rho, the density of air at 20C, in kg/m^3.
const Density = 1.2041

// BulkModulus is kappa = rho * c^2.
const BulkModulus = Density * SpeedOfSound * SpeedOfSound

// CharacteristicImpedance is Z0 = rho * c, the plane-wave characteristic
// impedance of air. Not read by any stencil kernel; kept for parity with
// the original implementation and for SPL-from-impedance conversions in
// future analysis code.
const CharacteristicImpedance = Density * SpeedOfSound
