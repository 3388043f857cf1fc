package basesvc

import (
	"reflect"
	"testing"
)

func TestParseRelationshipTag(t *testing.T) {
	type group struct {
		Name           string
		_Relationships struct{} `relationship:"collection:ad_units,field:groupId,message:Còn %d ad thuộc group.|collection:recipes,field:groupId"`
	}

	rels := ParseRelationshipTag(reflect.TypeOf(group{}))
	if len(rels) != 2 {
		t.Fatalf("phải parse ra 2 quan hệ, got %d", len(rels))
	}

	if rels[0].CollectionName != "ad_units" || rels[0].FieldName != "groupId" {
		t.Errorf("quan hệ 1 sai: %+v", rels[0])
	}
	if rels[0].ErrorMessage != "Còn %d ad thuộc group." {
		t.Errorf("message quan hệ 1 sai: %q", rels[0].ErrorMessage)
	}

	// Quan hệ không khai báo message dùng message mặc định
	if rels[1].CollectionName != "recipes" || rels[1].ErrorMessage == "" {
		t.Errorf("quan hệ 2 sai: %+v", rels[1])
	}
}

func TestParseRelationshipTagOptions(t *testing.T) {
	type model struct {
		Ref string `relationship:"collection:recipe_assets,field:recipeId,optional:true,cascade:1"`
	}

	rels := ParseRelationshipTag(reflect.TypeOf(model{}))
	if len(rels) != 1 {
		t.Fatalf("phải parse ra 1 quan hệ, got %d", len(rels))
	}
	if !rels[0].Optional || !rels[0].Cascade {
		t.Errorf("optional/cascade không được parse: %+v", rels[0])
	}
}

func TestParseRelationshipTagEmptyStruct(t *testing.T) {
	type plain struct {
		Name string
	}
	if rels := ParseRelationshipTag(reflect.TypeOf(plain{})); len(rels) != 0 {
		t.Errorf("struct không có tag không được sinh quan hệ, got %v", rels)
	}
}
