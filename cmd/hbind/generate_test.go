package main

import (
	"strings"
	"testing"

	"github.com/nihei9/hbind/header"
)

func TestBindingFileName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "monitor.h", want: "monitor.pxd"},
		{path: "src/core/utils.h", want: "utils.pxd"},
		{path: "noext", want: "noext.pxd"},
	}
	for _, tt := range tests {
		if got := bindingFileName(tt.path); got != tt.want {
			t.Errorf("unexpected file name of %v; want: %v, got: %v", tt.path, tt.want, got)
		}
	}
}

func TestDescribe(t *testing.T) {
	decls, err := header.Parse(strings.NewReader(`#include <stdio.h>
#define N
enum E { A };
struct S { int a; int b; };
int f(int a);
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"standard",
		"define",
		"1 member",
		"2 members",
		"int f(int a)",
	}
	for i, d := range decls {
		if got := describe(d); got != want[i] {
			t.Errorf("unexpected detail of %v; want: %v, got: %v", d.Name(), want[i], got)
		}
	}
}
