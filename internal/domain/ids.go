package domain

// SubjectID is the authenticated subject from the JWT `sub` claim.
// Its format is controlled by the identity provider; treat it as opaque.
type SubjectID string

type UserID string

type TripID string

type BookingID string
