package game

// Hub method and event names on the wire.
const (
	methodRegisterPlayer   = "RegisterPlayer"
	methodJoinTable        = "JoinTable"
	methodPlaceBid         = "PlaceBid"
	methodPassBid          = "PassBid"
	methodSelectTrump      = "SelectTrump"
	methodPlayCard         = "PlayCard"
	methodShowTrump        = "ShowTrump"
	methodStartNextGame    = "StartNextGame"
	methodRefreshState     = "RefreshState"
	methodForfeitGame      = "ForfeitGame"
	methodUnregisterPlayer = "UnregisterPlayer"

	eventOnError                   = "OnError"
	eventOnStateUpdated            = "OnStateUpdated"
	eventOnRegisterPlayerCompleted = "OnRegisterPlayerCompleted"
)

// Method is the numeric hub method id the server names in OnError
// pushes.
type Method int

const (
	MethodRegisterPlayer Method = iota + 1
	MethodJoinTable
	MethodPlaceBid
	MethodPassBid
	MethodSelectTrump
	MethodPlayCard
	MethodShowTrump
	MethodStartNextGame
	MethodRefreshState
	MethodForfeitGame
)

func (m Method) String() string {
	switch m {
	case MethodRegisterPlayer:
		return methodRegisterPlayer
	case MethodJoinTable:
		return methodJoinTable
	case MethodPlaceBid:
		return methodPlaceBid
	case MethodPassBid:
		return methodPassBid
	case MethodSelectTrump:
		return methodSelectTrump
	case MethodPlayCard:
		return methodPlayCard
	case MethodShowTrump:
		return methodShowTrump
	case MethodStartNextGame:
		return methodStartNextGame
	case MethodRefreshState:
		return methodRefreshState
	case MethodForfeitGame:
		return methodForfeitGame
	default:
		return "Unknown"
	}
}
