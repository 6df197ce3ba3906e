package login

// AnimatedImage describes one animated skin layer (e.g. a cape or skin
// animation frame strip).
type AnimatedImage struct {
	AnimationExpression uint32  `json:"AnimationExpression"`
	Frames              float32 `json:"Frames"`
	Image               string  `json:"Image"`
	ImageHeight         uint32  `json:"ImageHeight"`
	ImageWidth          uint32  `json:"ImageWidth"`
	Type                uint32  `json:"Type"`
}

// PersonaPiece is one equipped persona-skin piece.
type PersonaPiece struct {
	IsDefault bool   `json:"IsDefault"`
	PackID    string `json:"PackId"`
	PieceID   string `json:"PieceId"`
	PieceType string `json:"PieceType"`
	ProductID string `json:"ProductId"`
}

// PieceTintColor is the tint palette applied to one persona piece.
type PieceTintColor struct {
	Colors    []string `json:"Colors"`
	PieceType string   `json:"PieceType"`
}

// ClientData is the player-data ("skin") JWT payload: client hardware
// info, skin/cape geometry, and persona customization. The schema is
// tolerant — unknown fields are ignored, not rejected.
type ClientData struct {
	AnimatedImageData          []AnimatedImage  `json:"AnimatedImageData"`
	ArmSize                    string           `json:"ArmSize"`
	CapeData                   string           `json:"CapeData"`
	CapeID                     string           `json:"CapeId"`
	CapeImageHeight            uint32           `json:"CapeImageHeight"`
	CapeImageWidth             uint32           `json:"CapeImageWidth"`
	CapeOnClassicSkin          bool             `json:"CapeOnClassicSkin"`
	ClientRandomID             uint64           `json:"ClientRandomId"`
	CurrentInputMode           uint32           `json:"CurrentInputMode"`
	DefaultInputMode           uint32           `json:"DefaultInputMode"`
	DeviceID                   string           `json:"DeviceId"`
	DeviceModel                string           `json:"DeviceModel"`
	DeviceOS                   uint32           `json:"DeviceOS"`
	GameVersion                string           `json:"GameVersion"`
	GuiScale                   uint32           `json:"GuiScale"`
	LanguageCode               string           `json:"LanguageCode"`
	PersonaPieces              []PersonaPiece   `json:"PersonaPieces"`
	PersonaSkin                bool             `json:"PersonaSkin"`
	PieceTintColors            []PieceTintColor `json:"PieceTintColors"`
	PlatformOfflineID          string           `json:"PlatformOfflineId"`
	PlatformOnlineID           string           `json:"PlatformOnlineId"`
	PlayFabID                  string           `json:"PlayFabId"`
	PremiumSkin                bool             `json:"PremiumSkin"`
	SelfSignedID               string           `json:"SelfSignedId"`
	ServerAddress              string           `json:"ServerAddress"`
	SkinAnimationData          string           `json:"SkinAnimationData"`
	SkinColor                  string           `json:"SkinColor"`
	SkinData                   string           `json:"SkinData"`
	SkinGeometryData           string           `json:"SkinGeometryData"`
	SkinGeometryDataEngineVer  string           `json:"SkinGeometryDataEngineVersion"`
	SkinID                     string           `json:"SkinId"`
	SkinImageHeight            uint32           `json:"SkinImageHeight"`
	SkinImageWidth             uint32           `json:"SkinImageWidth"`
	SkinResourcePatch          string           `json:"SkinResourcePatch"`
	ThirdPartyName             string           `json:"ThirdPartyName"`
	ThirdPartyNameOnly         bool             `json:"ThirdPartyNameOnly"`
	UIProfile                  uint32           `json:"UIProfile"`
}
