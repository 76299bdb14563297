package zabbix

import "testing"

func TestSenderResponse_ParseInfo(t *testing.T) {
	tests := []struct {
		info    string
		want    SenderInfo
		wantErr bool
	}{
		{
			info: "processed: 3; failed: 1; total: 4; seconds spent: 0.000055",
			want: SenderInfo{Processed: 3, Failed: 1, Total: 4},
		},
		{info: "", want: SenderInfo{}},
		{info: "processed: x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.info, func(t *testing.T) {
			got, err := SenderResponse{Response: "success", Info: tt.info}.ParseInfo()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInfo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetSyshealthItems_UniqueKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, item := range GetSyshealthItems() {
		if seen[item.Key] {
			t.Errorf("duplicate key %s", item.Key)
		}
		seen[item.Key] = true
	}
	if !seen[KeyTick] || !seen[KeyMemoryUsed] {
		t.Error("catalogue is missing core items")
	}
}
