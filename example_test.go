package jsongo_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vinicius-lino-figueiredo/jsongo"
)

func ExampleNewMemDB() {
	ctx := context.Background()

	// Collections of an in-memory database start empty and are never
	// written anywhere.
	db := jsongo.NewMemDB()

	users, err := db.Collection("users")
	if err != nil {
		panic(err)
	}

	if _, err := users.InsertOne(ctx, jsongo.M{"_id": "ana", "age": 31}); err != nil {
		panic(err)
	}

	count, _ := users.Count(ctx)
	fmt.Println(count)
	// Output: 1
}

func ExampleNewFSDB() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "jsongo")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	// Each collection is stored in "<dir>/<name>.json" when saved.
	db := jsongo.NewFSDB(dir)

	planets, _ := db.Collection("planets")
	_, err = planets.InsertMany(ctx,
		jsongo.M{"_id": "mars", "moons": 2},
		jsongo.M{"_id": "Earth", "moons": 1},
	)
	if err != nil {
		panic(err)
	}

	if err := db.SaveAll(ctx); err != nil {
		panic(err)
	}

	b, _ := os.ReadFile(filepath.Join(dir, "planets.json"))
	fmt.Print(string(b))
	// Output:
	// [
	//   {
	//     "_id": "Earth",
	//     "moons": 1
	//   },
	//   {
	//     "_id": "mars",
	//     "moons": 2
	//   }
	// ]
}

func ExampleCollection_Find() {
	ctx := context.Background()
	db := jsongo.NewMemDB()
	people, _ := db.Collection("people")

	people.InsertMany(ctx,
		jsongo.M{"_id": 1, "name": "Huguinho", "age": 12},
		jsongo.M{"_id": 2, "name": "Zezinho", "age": 15},
		jsongo.M{"_id": 3, "name": "Luisinho", "age": 9},
	)

	cur, err := people.Find(ctx,
		jsongo.M{"age": jsongo.M{"$gt": 10}},
		jsongo.WithSort(jsongo.Sort{{Key: "age", Order: -1}}),
	)
	if err != nil {
		panic(err)
	}
	defer cur.Close()

	type person struct {
		Name string `jsongo:"name"`
		Age  int    `jsongo:"age"`
	}

	for cur.Next() {
		var p person
		if err := cur.Scan(ctx, &p); err != nil {
			panic(err)
		}
		fmt.Println(p.Name, p.Age)
	}
	if err := cur.Err(); err != nil {
		panic(err)
	}
	// Output:
	// Zezinho 15
	// Huguinho 12
}

func ExampleCollection_UpsertOne() {
	ctx := context.Background()
	db := jsongo.NewMemDB()
	tasks, _ := db.Collection("tasks")

	tasks.InsertMany(ctx,
		jsongo.M{"_id": "a", "done": false},
		jsongo.M{"_id": "b", "done": false},
	)

	// The document keeps its position in the collection.
	tasks.UpsertOne(ctx, jsongo.M{"_id": "a", "done": true})
	tasks.UpsertOne(ctx, jsongo.M{"_id": "c", "done": false})

	docs, _ := tasks.Docs(ctx)
	for _, doc := range docs {
		fmt.Println(doc.ID(), doc.Get("done"))
	}
	// Output:
	// a true
	// b false
	// c false
}

func ExampleCollection_DeleteMany() {
	ctx := context.Background()
	db := jsongo.NewMemDB()
	logs, _ := db.Collection("logs")

	logs.InsertMany(ctx,
		jsongo.M{"_id": 1, "level": "debug"},
		jsongo.M{"_id": 2, "level": "error"},
		jsongo.M{"_id": 3, "level": "debug"},
	)

	res, err := logs.DeleteMany(ctx, jsongo.M{"level": "debug"})
	if err != nil {
		panic(err)
	}

	left, _ := logs.Count(ctx)
	fmt.Println(res.DeletedCount, left)
	// Output: 2 1
}

func ExampleDatabase_Fsck() {
	ctx := context.Background()
	db := jsongo.NewMemDB()

	customers, _ := db.Collection("customer")
	orders, _ := db.Collection("orders")

	customers.InsertOne(ctx, jsongo.M{"_id": "c1"})
	orders.InsertMany(ctx,
		jsongo.M{"_id": "o1", "customer_id": "c1"},
		jsongo.M{"_id": "o2", "customer_id": "c2"},
	)

	violations, err := db.Fsck(ctx)
	if err != nil {
		panic(err)
	}
	for _, v := range violations {
		fmt.Printf("%s %v %s: %s\n", v.Collection, v.Doc.ID(), v.Field, v.Message)
	}
	// Output: orders o2 customer_id: no matching related document
}

func ExampleRelationTarget() {
	for _, field := range []string{"customer_id", "Buyer (customer_id)", "_id", "name"} {
		target, ok := jsongo.RelationTarget(field)
		fmt.Printf("%q %q %v\n", field, target, ok)
	}
	// Output:
	// "customer_id" "customer" true
	// "Buyer (customer_id)" "customer" true
	// "_id" "" false
	// "name" "" false
}
