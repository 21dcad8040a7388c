package approvalgroup

import (
	"encoding/json"
	"strconv"
	"time"
)

// SystemConfigKeyApprovalGroup is the config key under which approval
// groups are stored; the system_configs table is shared with other
// per-company settings.
const SystemConfigKeyApprovalGroup = "approvalGroup"

// SystemConfig is one row of per-company configuration. Approval groups
// live here as a JSON value with up to five ordered approver slots.
type SystemConfig struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	CompanyID int64  `gorm:"column:company_id;not null;index:idx_system_configs_company_key"`
	Key       string `gorm:"column:key;not null;index:idx_system_configs_company_key"`
	Value     string `gorm:"column:value;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SystemConfig) TableName() string {
	return "system_configs"
}

// GroupValue is the JSON shape stored in SystemConfig.Value. Empty slots
// hold the empty string.
type GroupValue struct {
	GroupName string `json:"groupName"`
	Approver1 string `json:"approver1"`
	Approver2 string `json:"approver2"`
	Approver3 string `json:"approver3"`
	Approver4 string `json:"approver4"`
	Approver5 string `json:"approver5"`
}

// NewGroupValue fills the five slots from an ordered approver list.
func NewGroupValue(groupName string, approverIDs []int64) GroupValue {
	slots := [5]string{}
	for i, id := range approverIDs {
		if i >= len(slots) {
			break
		}
		slots[i] = strconv.FormatInt(id, 10)
	}
	return GroupValue{
		GroupName: groupName,
		Approver1: slots[0],
		Approver2: slots[1],
		Approver3: slots[2],
		Approver4: slots[3],
		Approver5: slots[4],
	}
}

// ApproverIDs returns the configured approvers in slot order, skipping
// empty slots.
func (v GroupValue) ApproverIDs() []int64 {
	slots := []string{v.Approver1, v.Approver2, v.Approver3, v.Approver4, v.Approver5}
	ids := make([]int64, 0, len(slots))
	for _, s := range slots {
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (c *SystemConfig) GroupValue() (GroupValue, error) {
	var v GroupValue
	err := json.Unmarshal([]byte(c.Value), &v)
	return v, err
}

func (c *SystemConfig) SetGroupValue(v GroupValue) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Value = string(b)
	return nil
}
