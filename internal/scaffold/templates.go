package scaffold

import "text/template"

var viewLayout = template.Must(template.New("view.json").Parse(`{
  "type": "SafeAreaView",
  "id": "{{.ID}}_root",
  "width": "matchParent",
  "height": "matchParent",
  "background": "#FFFFFF",
  "orientation": "vertical",
  "child": [
    {
      "type": "Label",
      "id": "title_label",
      "text": "@{title}",
      "fontSize": 18,
      "topMargin": 16,
      "leftMargin": 16,
      "rightMargin": 16
    }
  ],
  "data": [
    { "name": "title", "class": "String", "defaultValue": "'{{.Title}}'" }
  ]
}
`))

var partialLayout = template.Must(template.New("partial.json").Parse(`{
  "type": "View",
  "id": "{{.ID}}_container",
  "width": "matchParent",
  "height": "wrapContent",
  "orientation": "vertical",
  "child": [
    {
      "type": "Label",
      "id": "{{.ID}}_label",
      "text": "{{.Title}}"
    }
  ]
}
`))

var viewController = template.Must(template.New("ViewController.swift").Parse(`import UIKit
import SwiftJsonUI

class {{.Type}}ViewController: SJUIViewController {
    private lazy var binding = {{.Binding}}(viewHolder: self)

    override func viewDidLoad() {
        super.viewDidLoad()
        if let root = UIViewCreator.createView("{{.Layout}}", target: self) {
            view.addSubview(root)
        }
        binding.bindView()
    }
}
`))

var swiftUIScreen = template.Must(template.New("Screen.swift").Parse(`import SwiftUI
import SwiftJsonUI

struct {{.Type}}Screen: View {
    @State private var title = "{{.Title}}"

    var body: some View {
        {{.View}}(title: title)
    }
}
`))

var customComponent = template.Must(template.New("Component.swift").Parse(`import UIKit
import SwiftUI
import SwiftJsonUI

class {{.Type}}: SJUIView {
    override class func createFromJSON(attr: JSON, target: Any, views: inout [String: UIView]) -> {{.Type}} {
        let view = {{.Type}}()
        view.translatesAutoresizingMaskIntoConstraints = false
        return view
    }
}

struct {{.Type}}View: View {
    var body: some View {
        EmptyView()
    }
}
`))

var adapterCellLayout = template.Must(template.New("cell.json").Parse(`{
  "type": "View",
  "id": "{{.ID}}_cell",
  "width": "matchParent",
  "height": "wrapContent",
  "child": [
    {
      "type": "Label",
      "id": "cell_title",
      "text": "@{title}",
      "topMargin": 8,
      "bottomMargin": 8,
      "leftMargin": 16
    }
  ],
  "data": [
    { "name": "title", "class": "String" }
  ]
}
`))

var adapter = template.Must(template.New("Adapter.swift").Parse(`import UIKit
import SwiftJsonUI

class {{.Type}}Cell: UICollectionViewCell {
    static let identifier = "{{.Type}}Cell"
    lazy var binding = {{.CellBinding}}(viewHolder: self)

    override init(frame: CGRect) {
        super.init(frame: frame)
        if let root = UIViewCreator.createView("{{.CellLayout}}", target: self) {
            contentView.addSubview(root)
        }
        binding.bindView()
    }

    required init?(coder: NSCoder) {
        fatalError("init(coder:) has not been implemented")
    }
}

class {{.Type}}Adapter: NSObject, UICollectionViewDataSource {
    var items: [String] = []

    func register(in collectionView: UICollectionView) {
        collectionView.register({{.Type}}Cell.self, forCellWithReuseIdentifier: {{.Type}}Cell.identifier)
        collectionView.dataSource = self
    }

    func collectionView(_ collectionView: UICollectionView, numberOfItemsInSection section: Int) -> Int {
        items.count
    }

    func collectionView(_ collectionView: UICollectionView, cellForItemAt indexPath: IndexPath) -> UICollectionViewCell {
        let cell = collectionView.dequeueReusableCell(withReuseIdentifier: {{.Type}}Cell.identifier, for: indexPath) as! {{.Type}}Cell
        cell.binding.title = items[indexPath.item]
        return cell
    }
}
`))

var converterSnippet = template.Must(template.New("config").Parse(`custom_view_types:
  {{.Type}}:
    class: {{.Type}}
    swiftui_view: {{.Type}}View
`))
