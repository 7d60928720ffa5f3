package domain

// Coords is a point on the bazaar map expressed in percent of the map's
// height (Lat) and width (Lng).
type Coords struct {
	Lat float64 `json:"lat" validate:"gte=0,lte=100"`
	Lng float64 `json:"lng" validate:"gte=0,lte=100"`
}

// RegistrationForm is the data collected by the store registration wizard.
type RegistrationForm struct {
	TelegramID    string  `json:"telegramId" validate:"required"`
	OwnerID       string  `json:"ownerId" validate:"required"`
	ContactNumber string  `json:"contactNumber" validate:"required"`
	Location      *Coords `json:"location" validate:"required"`
	Address       string  `json:"address" validate:"required"`
}
