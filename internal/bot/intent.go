package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Namespace identifies a callback intent family.
type Namespace string

const (
	NSCommand    Namespace = "cmd"
	NSLogout     Namespace = "logout"
	NSRole       Namespace = "role"
	NSChangeRole Namespace = "change_role"
	NSAdmin      Namespace = "admin"
	NSShowMenu   Namespace = "show"
)

// Actions per family. The sets are closed; both Encode and Decode
// reject anything outside them.
const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"

	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleBack  = "back"

	AdminSelect   = "select"
	AdminShow     = "show"
	AdminGenerate = "generate"
)

var (
	// ErrInvalidFormat reports a token whose field count or field values
	// do not match its namespace. The user sees "invalid request format".
	ErrInvalidFormat = errors.New("invalid callback format")

	// ErrUnknownNamespace reports a token whose first field matches no
	// known family. The user sees "unknown command", not an error.
	ErrUnknownNamespace = errors.New("unknown callback namespace")
)

// Intent is the decoded, structured meaning of a callback token.
// SubjectID is carried for auditability only and is never used for
// authorization; that always comes from the resolved user record.
type Intent struct {
	Namespace Namespace
	// Action for logout/role/admin/show families.
	Action string
	// Option is the second parameter of two-parameter admin intents.
	Option string
	// SubjectID is the chat id embedded in the token.
	SubjectID int64
	// Command carried by cmd_ tokens.
	Command string
}

// EncodeCommand builds a cmd_<name> token that re-invokes a slash command.
func EncodeCommand(command string) (string, error) {
	if command == "" {
		return "", ErrInvalidFormat
	}
	return "cmd_" + command, nil
}

// Encode validates the intent against its family's closed field sets and
// renders the underscore-joined token. Validation happens here, at build
// time, so a malformed token can never reach a keyboard.
func Encode(it Intent) (string, error) {
	switch it.Namespace {
	case NSCommand:
		return EncodeCommand(it.Command)

	case NSLogout:
		if it.Action != ActionConfirm && it.Action != ActionCancel {
			return "", ErrInvalidFormat
		}
		return fmt.Sprintf("logout_%s_%d", it.Action, it.SubjectID), nil

	case NSRole:
		if it.Action != RoleUser && it.Action != RoleAdmin && it.Action != RoleBack {
			return "", ErrInvalidFormat
		}
		return fmt.Sprintf("role_%s_%d", it.Action, it.SubjectID), nil

	case NSChangeRole:
		return fmt.Sprintf("change_role_%d", it.SubjectID), nil

	case NSAdmin:
		if it.Action != AdminSelect && it.Action != AdminShow && it.Action != AdminGenerate {
			return "", ErrInvalidFormat
		}
		if it.Option == "" || strings.Contains(it.Option, "_") {
			return "", ErrInvalidFormat
		}
		return fmt.Sprintf("admin_%s_%s_%d", it.Action, it.Option, it.SubjectID), nil

	case NSShowMenu:
		if it.Action != RoleAdmin && it.Action != RoleUser {
			return "", ErrInvalidFormat
		}
		return fmt.Sprintf("show_%s_menu_%d", it.Action, it.SubjectID), nil

	default:
		return "", ErrUnknownNamespace
	}
}

// Decode parses a callback token back into an Intent. Field count is
// strict per family; a mismatch is ErrInvalidFormat, an unknown first
// field is ErrUnknownNamespace.
func Decode(token string) (Intent, error) {
	// Command names themselves contain underscores (hubstaff_login), so
	// the cmd_ family is prefix-based rather than arity-based.
	if name, ok := strings.CutPrefix(token, "cmd_"); ok {
		if name == "" {
			return Intent{}, ErrInvalidFormat
		}
		return Intent{Namespace: NSCommand, Command: name}, nil
	}

	fields := strings.Split(token, "_")

	switch fields[0] {
	case "logout":
		if len(fields) != 3 {
			return Intent{}, ErrInvalidFormat
		}
		if fields[1] != ActionConfirm && fields[1] != ActionCancel {
			return Intent{}, ErrInvalidFormat
		}
		id, err := parseSubjectID(fields[2])
		if err != nil {
			return Intent{}, err
		}
		return Intent{Namespace: NSLogout, Action: fields[1], SubjectID: id}, nil

	case "role":
		if len(fields) != 3 {
			return Intent{}, ErrInvalidFormat
		}
		if fields[1] != RoleUser && fields[1] != RoleAdmin && fields[1] != RoleBack {
			return Intent{}, ErrInvalidFormat
		}
		id, err := parseSubjectID(fields[2])
		if err != nil {
			return Intent{}, err
		}
		return Intent{Namespace: NSRole, Action: fields[1], SubjectID: id}, nil

	case "change":
		if len(fields) != 3 || fields[1] != "role" {
			return Intent{}, ErrInvalidFormat
		}
		id, err := parseSubjectID(fields[2])
		if err != nil {
			return Intent{}, err
		}
		return Intent{Namespace: NSChangeRole, SubjectID: id}, nil

	case "admin":
		if len(fields) != 4 {
			return Intent{}, ErrInvalidFormat
		}
		if fields[1] != AdminSelect && fields[1] != AdminShow && fields[1] != AdminGenerate {
			return Intent{}, ErrInvalidFormat
		}
		id, err := parseSubjectID(fields[3])
		if err != nil {
			return Intent{}, err
		}
		return Intent{Namespace: NSAdmin, Action: fields[1], Option: fields[2], SubjectID: id}, nil

	case "show":
		if len(fields) != 4 || fields[2] != "menu" {
			return Intent{}, ErrInvalidFormat
		}
		if fields[1] != RoleAdmin && fields[1] != RoleUser {
			return Intent{}, ErrInvalidFormat
		}
		id, err := parseSubjectID(fields[3])
		if err != nil {
			return Intent{}, err
		}
		return Intent{Namespace: NSShowMenu, Action: fields[1], SubjectID: id}, nil

	default:
		return Intent{}, ErrUnknownNamespace
	}
}

func parseSubjectID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	return id, nil
}
