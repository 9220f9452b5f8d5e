package game

import (
	"encoding/json"
	"errors"

	"dario.cat/mergo"

	"github.com/yola1107/cards56/internal/storage"
	"github.com/yola1107/cards56/library/zlog"
)

// loginParamsKey is the storage key the last confirmed login parameters
// live under.
const loginParamsKey = "56cards_last_login_params"

// LoginParams is the user-chosen identity and table selection feeding
// registration. TableType is carried as a stringified int 0-2, matching
// the stored form.
type LoginParams struct {
	UserName  string `json:"userName"`
	TableType string `json:"tableType"`
	TableName string `json:"tableName"`
	Language  string `json:"language"`
	Watch     bool   `json:"watch"`
}

// LoginUpdate is a partial change; nil fields keep the current value.
type LoginUpdate struct {
	UserName  *string
	TableType *string
	TableName *string
	Language  *string
	Watch     *bool
}

func DefaultLoginParams() LoginParams {
	return LoginParams{TableType: "0", Language: "ml"}
}

// LoadLoginParams reads the persisted parameters. Anything missing or
// malformed falls back to the given defaults, field by field.
func LoadLoginParams(store storage.Store, defaults LoginParams) LoginParams {
	params := LoginParams{}
	data, err := store.Get(loginParamsKey)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &params); err != nil {
			zlog.Warnf("stored login params unreadable, using defaults: %v", err)
			params = LoginParams{}
		}
	case !errors.Is(err, storage.ErrNotFound):
		zlog.Warnf("loading login params: %v", err)
	}
	if err := mergo.Merge(&params, defaults); err != nil {
		zlog.Warnf("merging login defaults: %v", err)
	}
	return params
}

// ApplyLoginUpdate merges a partial update into the current value.
// Unchanged input returns the current value and false.
func ApplyLoginUpdate(cur LoginParams, u LoginUpdate) (LoginParams, bool) {
	next := cur
	if u.UserName != nil {
		next.UserName = *u.UserName
	}
	if u.TableType != nil {
		next.TableType = *u.TableType
	}
	if u.TableName != nil {
		next.TableName = *u.TableName
	}
	if u.Language != nil {
		next.Language = *u.Language
	}
	if u.Watch != nil {
		next.Watch = *u.Watch
	}
	return next, next != cur
}

func saveLoginParams(store storage.Store, p LoginParams) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return store.Put(loginParamsKey, data)
}
