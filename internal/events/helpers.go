package events

import (
	"encoding/json"
	"fmt"
)

// SetDirtyTransitionData sets the Data field with DirtyTransitionData in a type-safe way.
func (e *FormEvent) SetDirtyTransitionData(data DirtyTransitionData) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert DirtyTransitionData: %w", err)
	}
	e.Data = dataMap
	return nil
}

// GetDirtyTransitionData retrieves DirtyTransitionData from the Data field.
func (e *FormEvent) GetDirtyTransitionData() (*DirtyTransitionData, error) {
	var data DirtyTransitionData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse DirtyTransitionData: %w", err)
	}
	return &data, nil
}

// SetSaveData sets the Data field with SaveData in a type-safe way.
func (e *FormEvent) SetSaveData(data SaveData) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert SaveData: %w", err)
	}
	e.Data = dataMap
	return nil
}

// GetSaveData retrieves SaveData from the Data field.
func (e *FormEvent) GetSaveData() (*SaveData, error) {
	var data SaveData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse SaveData: %w", err)
	}
	return &data, nil
}

// SetStageChangeData sets the Data field with StageChangeData in a type-safe way.
func (e *FormEvent) SetStageChangeData(data StageChangeData) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert StageChangeData: %w", err)
	}
	e.Data = dataMap
	return nil
}

// GetStageChangeData retrieves StageChangeData from the Data field.
func (e *FormEvent) GetStageChangeData() (*StageChangeData, error) {
	var data StageChangeData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse StageChangeData: %w", err)
	}
	return &data, nil
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(data interface{}) (map[string]interface{}, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// mapToStruct converts a map[string]interface{} to a struct using JSON unmarshaling.
func mapToStruct(dataMap map[string]interface{}, target interface{}) error {
	bytes, err := json.Marshal(dataMap)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, target)
}
