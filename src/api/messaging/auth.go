package messaging

type AuthClass uint8

const (
	AuthNone AuthClass = iota
	AuthData
	AuthMoney
	AuthMisc
)

type DataAuthKind uint8

const (
	PublicRead DataAuthKind = iota + 1
	PrivateRead
	Write
)

type MoneyAuthKind uint8

const (
	ReadBalance MoneyAuthKind = iota + 1
	ReadHistory
	TransferMoney
)

type MiscAuthKind uint8

const (
	ManageAppKeys MiscAuthKind = iota + 1
	WriteAndTransfer
)

// AuthorisationKind labels the permission a requester must hold before a
// cmd or query is serviced. Evaluating it is not this package's job.
type AuthorisationKind struct {
	Class AuthClass
	Data  DataAuthKind
	Money MoneyAuthKind
	Misc  MiscAuthKind
}

func DataAuth(k DataAuthKind) AuthorisationKind {
	return AuthorisationKind{Class: AuthData, Data: k}
}

func MoneyAuth(k MoneyAuthKind) AuthorisationKind {
	return AuthorisationKind{Class: AuthMoney, Money: k}
}

func MiscAuth(k MiscAuthKind) AuthorisationKind {
	return AuthorisationKind{Class: AuthMisc, Misc: k}
}

// NoAuth is for requests anyone may make.
var NoAuth = AuthorisationKind{}

var (
	dataAuthNames  = []string{PublicRead: "PublicRead", PrivateRead: "PrivateRead", Write: "Write"}
	moneyAuthNames = []string{ReadBalance: "ReadBalance", ReadHistory: "ReadHistory", TransferMoney: "Transfer"}
	miscAuthNames  = []string{ManageAppKeys: "ManageAppKeys", WriteAndTransfer: "WriteAndTransfer"}
)

// authName looks up a sub-kind name; unknown values print as "?".
func authName(names []string, k uint8) string {
	if int(k) >= len(names) || names[k] == "" {
		return "?"
	}
	return names[k]
}

func (a AuthorisationKind) String() string {
	switch a.Class {
	case AuthData:
		return "Data(" + authName(dataAuthNames, uint8(a.Data)) + ")"
	case AuthMoney:
		return "Money(" + authName(moneyAuthNames, uint8(a.Money)) + ")"
	case AuthMisc:
		return "Misc(" + authName(miscAuthNames, uint8(a.Misc)) + ")"
	default:
		return "None"
	}
}
