package nrt

import (
	"reflect"
	"testing"
)

// The table layout is the contract independently compiled callers bind
// against: six slots, fixed order. A change here is an ABI break.
func TestAPITableLayoutFrozen(t *testing.T) {
	typ := reflect.TypeOf(APIFunctions{})
	want := []string{"Alloc", "AllocExternal", "ManageMemory", "Acquire", "Release", "Data"}
	if typ.NumField() != len(want) {
		t.Fatalf("API table has %d fields, want %d", typ.NumField(), len(want))
	}
	for i, name := range want {
		if got := typ.Field(i).Name; got != name {
			t.Fatalf("API table field %d is %q, want %q", i, got, name)
		}
	}
	if APIVersion != 1 {
		t.Fatalf("APIVersion=%d, want 1", APIVersion)
	}
}

func TestGetAPISharedTable(t *testing.T) {
	if GetAPI() != GetAPI() {
		t.Fatalf("GetAPI must return the shared table")
	}
	api := GetAPI()
	v := reflect.ValueOf(*api)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).IsNil() {
			t.Fatalf("API table slot %s is nil", reflect.TypeOf(*api).Field(i).Name)
		}
	}
}

func TestAPITableLifecycle(t *testing.T) {
	Init()
	api := GetAPI()
	mi := api.Alloc(32)
	if mi == nil {
		t.Fatalf("api.Alloc returned nil")
	}
	if len(api.Data(mi)) != 32 {
		t.Fatalf("api.Data len=%d, want 32", len(api.Data(mi)))
	}
	api.Acquire(mi)
	api.Release(mi)
	api.Release(mi)
	if err := CheckLeaks(); err != nil {
		t.Fatalf("CheckLeaks: %v", err)
	}
}

func TestManageMemory(t *testing.T) {
	Init()
	foreign := make([]byte, 16)
	var freed []byte
	mi := ManageMemory(foreign, func(data []byte) {
		freed = data
	})
	if mi.Size() != 0 {
		t.Fatalf("managed handle size=%d, want 0", mi.Size())
	}
	if &mi.Data()[0] != &foreign[0] {
		t.Fatalf("managed handle does not wrap the foreign buffer")
	}
	mi.Release()
	if &freed[0] != &foreign[0] {
		t.Fatalf("deallocator did not receive the foreign buffer")
	}
	s := ReadStats()
	if s.Alloc != 0 || s.Free != 0 {
		t.Fatalf("foreign memory moved the byte counters: %+v", s)
	}
	if s.MiAlloc != 1 || s.MiFree != 1 {
		t.Fatalf("handle counters %d/%d, want 1/1", s.MiAlloc, s.MiFree)
	}
}
